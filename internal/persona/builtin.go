package persona

import "time"

// DefaultID is the id of the fallback persona used when nothing else is
// enabled or persisted.
const DefaultID = "default"

var builtinCreated = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// Builtins returns the built-in personas keyed by id. The returned map
// is freshly allocated on each call; the configs themselves are process
// constants and must not be mutated.
func Builtins() map[string]IndustryConfig {
	return map[string]IndustryConfig{
		DefaultID:         defaultConfig(),
		"millennium-dental": millenniumDentalConfig(),
	}
}

func defaultConfig() IndustryConfig {
	return IndustryConfig{
		ID:          DefaultID,
		Name:        "General B2B Analysis",
		Description: "Standard AI opportunity analysis for any business",

		SearchQueryTemplates: SearchQueryTemplates{
			CompanyType: []string{`"{companyName}" services OR products`},
			Technology:  []string{`"{companyName}" technology OR "tech stack"`},
			Services:    []string{`"{companyName}" offerings OR solutions`},
		},

		SystemPrompt: `You are analyzing a company for AI-driven digital transformation opportunities.

Analyze {companyName} (website: {websiteUrl}) using real-time web search and
identify 2-3 high-impact opportunities where AI solutions could deliver
measurable ROI.

Provide analysis in this JSON structure:
{
  "opportunityScore": 0-100,
  "estimatedAnnualROI": "$XXX,XXX",
  "opportunities": [
    {
      "title": "string",
      "problem": "string",
      "solution": "string",
      "estimatedImpact": "string",
      "timeline": "string"
    }
  ],
  "keyInsights": ["string"]
}`,

		ScoringCriteria: ScoringCriteria{
			HighPriorityIndicators: []Indicator{
				{Keyword: "digital transformation", Points: 15},
				{Keyword: "technology", Points: 10},
			},
			MediumPriorityIndicators: []Indicator{
				{Keyword: "innovation", Points: 5},
				{Keyword: "growth", Points: 5},
			},
		},

		Enabled:   true,
		CreatedAt: builtinCreated,
		UpdatedAt: builtinCreated,
	}
}

func millenniumDentalConfig() IndustryConfig {
	return IndustryConfig{
		ID:           "millennium-dental",
		Name:         "Millennium Dental Technologies",
		Description:  "PerioLase MVP-7 laser system for dental practices",
		ClientName:   "Millennium Dental Technologies, Inc.",
		ProductFocus: "PerioLase MVP-7 Laser System",

		TargetCompanyTypes: []string{
			"periodontics", "periodontist", "periodontal practice",
			"general dentistry", "general dental practice", "family dentistry",
			"prosthodontics", "prosthodontist",
			"oral surgery", "oral surgeon",
			"dental implants", "implant dentistry",
		},
		ExcludedCompanyTypes: []string{
			"endodontics", "endodontist", "root canal specialist",
			"orthodontics", "orthodontist",
			"pediatric dentistry", "pediatric dentist",
		},

		SearchQueryTemplates: SearchQueryTemplates{
			CompanyType: []string{
				`"{companyName}" periodontist OR "periodontal services"`,
				`"{companyName}" "dental implants" OR prosthodontist`,
				`"{companyName}" "oral surgery" OR "oral surgeon"`,
				`"{companyName}" "gum disease treatment"`,
				`"{companyName}" services procedures -endodontic`,
			},
			Technology: []string{
				`"{companyName}" "laser dentistry" OR "advanced technology"`,
				`"{companyName}" "minimally invasive" OR "patient comfort"`,
				`"{companyName}" "periodontal surgery" OR "gum surgery"`,
			},
			Services: []string{
				`"{companyName}" "periodontal treatment"`,
				`"{companyName}" "dental implants"`,
				`"{companyName}" "gum grafting" OR "bone grafting"`,
			},
			Referrals: []string{
				`"{companyName}" "accepting referrals" OR "referring dentists"`,
				`"{companyName}" "specialist" OR "specialty practice"`,
				`"{companyName}" "referral network"`,
			},
		},

		SystemPrompt: `You are analyzing dental practices for their potential to adopt the PerioLase MVP-7 laser
and LANAP protocol from Millennium Dental Technologies.

TARGET PRACTICE TYPES (analyze only these):
- Periodontal practices (periodontists) - PRIMARY TARGET
- General dental practices offering periodontal services
- Prosthodontic practices dealing with implants
- Oral surgery practices handling implants and soft tissue

EXCLUDE: Endodontic practices (root canal specialists), orthodontists, pediatric dentists.

Analyze {companyName} (website: {websiteUrl}).

TECHNOLOGY FOCUS - PerioLase MVP-7 Laser System enables:
1. LANAP Protocol: Minimally invasive alternative to gum surgery for treating periodontal disease.
2. LAPIP Protocol: Treatment for failing dental implants.
3. Value-Added Procedures (VAPS): Various soft tissue procedures.

REFERRAL POTENTIAL ANALYSIS (CRITICAL):
Your primary goal is to identify "Referral Generators" - general practices that currently send
patients to specialists for perio/implant procedures. This represents a major "lost revenue"
opportunity for them.
- If a practice is a Referral Generator, frame the "problem" as lost revenue and the "solution"
  as adopting the PerioLase to keep high-value cases in-house.
- Analyze their website for phrases like "works with specialists", "referrals to periodontists",
  or a lack of advanced perio/implant services.
- In the 'referralPotential.notes', explain your reasoning, focusing on evidence of them
  referring cases out.

ROI CALCULATION FRAMEWORK:
- LANAP cases: $200,000-250,000 annual potential
- LAPIP cases: $150,000-180,000 annual potential
- VAPS procedures: $80,000-120,000 annual potential
- Timeline: 4-15 months depending on practice size

CRITICAL: Use ONLY information from web search grounding. Cite all sources.

Provide analysis in this JSON structure:
{
  "practiceType": "periodontics|general_dentistry|prosthodontics|oral_surgery|excluded",
  "practiceTypeJustification": "string (Explain WHY you chose this practice type based on their services, staff, or 'about us' page.)",
  "isTargetPractice": boolean,
  "opportunityScore": 0-100,
  "estimatedAnnualROI": "$XXX,XXX",
  "opportunities": [
    {
      "title": "string",
      "problem": "string",
      "solution": "string",
      "estimatedImpact": "string",
      "timeline": "string"
    }
  ],
  "referralPotential": {
    "type": "receiver|generator|both|none",
    "score": "low|medium|high",
    "notes": "string (Explain WHY you chose this type and score, focusing on evidence of them referring cases out.)"
  },
  "keyInsights": ["string"]
}`,

		ReferralAnalysisPrompt: `REFERRAL NETWORK ASSESSMENT:

1. REFERRAL RECEIVER (Specialist Practice):
   - Does this practice accept referrals from general dentists?
   - Do they market to referring dentists?
   - Are they positioned as a specialty center?
   -> If YES: HIGH-VALUE target (referral hub potential)

2. REFERRAL GENERATOR (General Practice):
   - Does this practice currently refer periodontal cases out?
   - Do they refer implant cases to specialists?
   -> If YES: Opportunity to KEEP cases in-house with PerioLase

3. NETWORK EXPANSION POTENTIAL:
   - Could this practice attract MORE referrals with PerioLase?
   - Could they become a regional LANAP/LAPIP center?

Rate: LOW / MEDIUM / HIGH and explain the opportunity.`,

		ScoringCriteria: ScoringCriteria{
			HighPriorityIndicators: []Indicator{
				{Keyword: "periodontist", Points: 30},
				{Keyword: "periodontal surgery", Points: 30},
				{Keyword: "dental implants", Points: 30},
				{Keyword: "advanced technology", Points: 30},
				{Keyword: "minimally invasive", Points: 30},
			},
			MediumPriorityIndicators: []Indicator{
				{Keyword: "laser dentistry", Points: 20},
				{Keyword: "gum disease", Points: 20},
				{Keyword: "bone grafting", Points: 20},
				{Keyword: "patient comfort", Points: 20},
				{Keyword: "multiple doctors", Points: 20},
			},
			ReferralIndicators: []Indicator{
				{Keyword: "accepting referrals", Points: 20},
				{Keyword: "referring dentists", Points: 20},
				{Keyword: "specialist", Points: 15},
				{Keyword: "referral network", Points: 15},
			},
			Disqualifiers: []string{
				"endodontist", "endodontic", "root canal specialist",
				"orthodontist", "orthodontic",
				"pediatric dentist", "kids dentistry", "children's dentistry",
			},
		},

		OpportunityTemplates: []OpportunityTemplate{
			{
				ID:               "lanap-protocol",
				Title:            "Elevate Periodontal Disease Treatment with LANAP Protocol",
				ProblemTemplate:  "Traditional periodontal surgeries can be invasive, painful, and require extended recovery, potentially leading to patient apprehension and lower treatment acceptance rates. While {companyName} offers advanced care, they may lack the most patient-centric, regenerative laser protocol.",
				SolutionTemplate: "Implement the FDA-cleared LANAP protocol using the PerioLase MVP-7 laser. This minimally invasive treatment offers significantly less pain, faster healing, and true regeneration of bone and tissue, directly aligning with {companyName}'s commitment to advanced, minimally invasive, and effective patient care.",
				EstimatedImpactRange: DollarRange{Min: 200000, Max: 250000},
				TimelineMonths:       MonthRange{Min: 6, Max: 12},
				ApplicableWhen:       []string{"isPeriodontist", "offersPerioSurgery", "isGeneralDentistWithPerio"},
			},
			{
				ID:               "lapip-protocol",
				Title:            "Introduce Advanced Peri-Implantitis Treatment (LAPIP Protocol)",
				ProblemTemplate:  "Dental implant complications, such as peri-implantitis, are a growing concern. Effectively treating ailing or failing implants often requires complex procedures, and traditional methods may not always ensure implant preservation. {companyName} offers dental implants and could benefit from a specialized laser protocol to address these issues.",
				SolutionTemplate: "Integrate the LAPIP protocol, performed with the PerioLase MVP-7, to provide a minimally invasive solution for treating peri-implantitis. This protocol helps preserve compromised implants, encourages osseointegration and bone regeneration, and reduces inflammation, establishing a new revenue stream for the practice.",
				EstimatedImpactRange: DollarRange{Min: 150000, Max: 180000},
				TimelineMonths:       MonthRange{Min: 8, Max: 15},
				ApplicableWhen:       []string{"offersImplants", "isProsthodontist", "isOralSurgeon"},
			},
			{
				ID:               "vaps-procedures",
				Title:            "Expand Minimally Invasive Soft Tissue Procedures and Enhance Patient Comfort",
				ProblemTemplate:  "Current soft tissue procedures, including those for cosmetic or therapeutic purposes, may involve traditional surgical techniques that result in increased patient discomfort, bleeding, and longer recovery periods. {companyName} emphasizes patient comfort and utilizing state-of-the-art technology.",
				SolutionTemplate: "Leverage the versatile PerioLase MVP-7 for its extensive Value-Added Procedures (VAPS). This enables the practice to offer a broader range of suture-free soft tissue treatments with reduced bleeding, faster healing, and enhanced patient comfort, further differentiating their advanced service offerings.",
				EstimatedImpactRange: DollarRange{Min: 80000, Max: 120000},
				TimelineMonths:       MonthRange{Min: 4, Max: 10},
				ApplicableWhen:       []string{"emphasizesComfort", "mentionsAdvancedTech", "hasMultipleDoctors"},
			},
		},

		ZeroScoreExcludes: true,
		Enabled:           true,
		CreatedAt:         builtinCreated,
		UpdatedAt:         builtinCreated,
	}
}
