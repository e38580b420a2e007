package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captiveadvisors/directory/internal/model"
)

const wiserPrimaryFixture = `# Financial Advisors in Georgia

![Site logo](https://cdn.wiseradvisor.com/logo.png)
## Find an Advisor

![Advisor photo](https://cdn.wiseradvisor.com/img/123.jpg)
### Jane Doe, CPA
Peachtree Accounting Group
Duluth, GA 30096
[Website](https://peachtreeaccounting.com)
[LinkedIn](https://www.linkedin.com/in/janedoe)

![Advisor photo](https://cdn.wiseradvisor.com/img/124.jpg)
### John Roe, CFP
Roe Retirement Group
Atlanta, GA
[Website](https://roeretirement.com)

![Advisor photo](https://cdn.wiseradvisor.com/img/125.jpg)
### Jane Doe, CPA
Duplicate card for the same advisor
Duluth, GA 30096
`

func TestWiserAdvisor_Primary(t *testing.T) {
	p := &WiserAdvisor{}
	advisors := p.Parse(wiserPrimaryFixture, 10)
	require.Len(t, advisors, 2)

	jane := advisors[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "Peachtree Accounting Group", jane.FirmName)
	assert.Equal(t, "Duluth", jane.City)
	assert.Equal(t, "GA", jane.State)
	assert.Equal(t, "30096", jane.ZipCode)
	assert.Equal(t, "https://peachtreeaccounting.com", jane.Website)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", jane.LinkedIn)
	assert.Equal(t, model.DesignationCPA, jane.Designation)
	assert.Contains(t, jane.Specialties, "Tax Planning")

	john := advisors[1]
	assert.Equal(t, "John Roe", john.Name)
	assert.Equal(t, "Atlanta", john.City)
	assert.Equal(t, "GA", john.State)
	assert.Equal(t, "00000", john.ZipCode, "missing zip stays a placeholder")
	assert.Equal(t, model.DesignationWealth, john.Designation)
}

func TestWiserAdvisor_Limit(t *testing.T) {
	p := &WiserAdvisor{}
	advisors := p.Parse(wiserPrimaryFixture, 1)
	require.Len(t, advisors, 1)
	assert.Equal(t, "Jane Doe", advisors[0].Name)
}

const wiserAltFixture = `Financial Advisors

**Jane Doe, CPA** - Duluth, GA
**Menu** - Atlanta, GA
**Bob Li, CFP** – Macon, GA
`

func TestWiserAdvisor_AlternativeWhenPrimaryEmpty(t *testing.T) {
	p := &WiserAdvisor{}
	advisors := p.Parse(wiserAltFixture, 10)
	require.Len(t, advisors, 2)

	assert.Equal(t, "Jane Doe", advisors[0].Name)
	assert.Equal(t, "Duluth", advisors[0].City)
	assert.Equal(t, "GA", advisors[0].State)
	assert.Equal(t, "00000", advisors[0].ZipCode)
	assert.Equal(t, model.DesignationCPA, advisors[0].Designation)

	assert.Equal(t, "Bob Li", advisors[1].Name)
	assert.Equal(t, "Macon", advisors[1].City)
}

func TestWiserAdvisor_NoMatchesReturnsEmpty(t *testing.T) {
	p := &WiserAdvisor{}
	assert.Empty(t, p.Parse("nothing resembling an advisor card", 10))
	assert.Empty(t, p.Parse("", 10))
}
