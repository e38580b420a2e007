package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captiveadvisors/directory/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"ingest", "serve", "blog", "export", "crm", "migrate"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "directory", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestIngestCommand_Flags(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("source")
	require.NotNil(t, flag, "ingest command should have --source flag")

	limit := ingestCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "0", limit.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestBlogGenerateCommand_Flags(t *testing.T) {
	require.NotNil(t, blogGenerateCmd.Flags().Lookup("topic"))
	category := blogGenerateCmd.Flags().Lookup("category")
	require.NotNil(t, category)
	assert.Equal(t, string(model.CategoryTaxStrategy), category.DefValue)
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, "1 min read", readTime("short piece"))
	assert.Equal(t, "1 min read", readTime(""))

	long := ""
	for i := 0; i < 450; i++ {
		long += "word "
	}
	assert.Equal(t, "3 min read", readTime(long))
}

func TestLeadRecord(t *testing.T) {
	lead := model.Lead{
		Name:            "Prospect",
		Email:           "p@example.com",
		Message:         "Interested in a captive.",
		RevenueBracket:  "$1M-$5M",
		CaptiveInterest: true,
		SourceType:      model.LeadSourceProfile,
		CreatedAt:       time.Now(),
	}
	advisor := &model.Advisor{
		Name:     "Jane Doe",
		Slug:     "jane-doe-duluth-tax-planning",
		FirmName: "Peachtree Accounting Group",
	}

	record := leadRecord(lead, advisor)
	assert.Equal(t, "Prospect", record["LastName"])
	assert.Equal(t, "Peachtree Accounting Group", record["Company"])
	assert.Equal(t, "Directory - profile", record["LeadSource"])
	assert.Contains(t, record["Description"], "jane-doe-duluth-tax-planning")
	assert.Contains(t, record["Description"], "Captive interest: true")
}
