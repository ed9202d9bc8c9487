package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// BuildPrompt renders a persona's system prompt against a target company.
// Every {companyName} and {websiteUrl} placeholder is substituted; the
// referral prompt, opportunity templates, product focus, and client name
// are appended when present. Pure function: deterministic, no I/O.
func BuildPrompt(cfg persona.IndustryConfig, company model.Company) string {
	var b strings.Builder

	prompt := cfg.SystemPrompt
	prompt = strings.ReplaceAll(prompt, "{companyName}", company.Name)
	prompt = strings.ReplaceAll(prompt, "{websiteUrl}", company.Website)
	b.WriteString(prompt)

	if cfg.ReferralAnalysisPrompt != "" {
		b.WriteString("\n\n")
		b.WriteString(cfg.ReferralAnalysisPrompt)
	}

	if len(cfg.OpportunityTemplates) > 0 {
		b.WriteString("\n\nAVAILABLE OPPORTUNITY TEMPLATES:\n")
		for i, tpl := range cfg.OpportunityTemplates {
			fmt.Fprintf(&b, "\n%d. %s", i+1, tpl.Title)
			fmt.Fprintf(&b, "\n   Estimated Impact: %s - %s",
				dollars(tpl.EstimatedImpactRange.Min),
				dollars(tpl.EstimatedImpactRange.Max),
			)
			fmt.Fprintf(&b, "\n   Timeline: %d-%d months", tpl.TimelineMonths.Min, tpl.TimelineMonths.Max)
			fmt.Fprintf(&b, "\n   Applicable when: %s", strings.Join(tpl.ApplicableWhen, ", "))
		}
	}

	if cfg.ProductFocus != "" {
		fmt.Fprintf(&b, "\n\nPRODUCT FOCUS: %s", cfg.ProductFocus)
	}
	if cfg.ClientName != "" {
		fmt.Fprintf(&b, "\nCLIENT: %s", cfg.ClientName)
	}

	return b.String()
}

// BuildUserMessage renders the per-company message sent alongside the
// persona's system instruction.
func BuildUserMessage(company model.Company) string {
	var b strings.Builder
	b.WriteString("Analyze the following company:\n")
	fmt.Fprintf(&b, "- Name: %s\n", company.Name)
	if company.Industry != "" {
		fmt.Fprintf(&b, "- Industry: %s\n", company.Industry)
	}
	fmt.Fprintf(&b, "- Website: %s\n", company.Website)
	b.WriteString("\nReturn your analysis strictly as a single JSON object. Do not include any explanatory text, markdown formatting, or anything outside of the JSON object.")
	return b.String()
}

// dollars formats a USD amount with thousands separators, e.g. $200,000.
func dollars(v float64) string {
	return usd.Sprintf("$%d", int64(v))
}
