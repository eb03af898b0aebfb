package evidence

import (
	"regexp"
	"strings"

	"github.com/clinicscan/clinicscan/internal/model"
)

// specialtyVocabulary lists the clinical specialties recognized in page
// text and structured data. Matches are stored lowercase.
var specialtyVocabulary = []string{
	"psychiatry", "psychology", "psychotherapy", "behavioral health",
	"mental health", "sleep medicine", "cardiology", "neurology",
	"dermatology", "orthopedics", "orthopedic surgery", "pediatrics",
	"family medicine", "internal medicine", "primary care", "oncology",
	"gastroenterology", "endocrinology", "pulmonology", "rheumatology",
	"urology", "nephrology", "ophthalmology", "optometry",
	"otolaryngology", "podiatry", "physical therapy",
	"obstetrics", "gynecology", "dentistry", "oral surgery",
	"pain management", "allergy", "immunology", "chiropractic",
	"addiction medicine", "geriatrics", "neuropsychology",
}

// structuredSpecialtyKeys are the JSON-LD properties read for specialty
// declarations.
var structuredSpecialtyKeys = []string{"medicalSpecialty", "specialty", "department"}

// modalityVocabulary lists treatment modalities and procedures in their
// canonical written form. Matching is case-insensitive on word
// boundaries; tokens are stored exactly as listed here.
var modalityVocabulary = []string{
	"CBT-I", "CBT", "DBT", "EMDR", "ACT", "ERP",
	"exposure therapy", "mindfulness", "medication management",
	"group therapy", "family therapy", "couples therapy",
	"IOP", "PHP", "TMS", "ketamine therapy",
	"neuropsychological testing", "psychological testing",
	"autism evaluation", "ABA", "biofeedback",
	"Polysomnogram", "PSG", "MSLT", "MWT", "CPAP", "BiPAP",
	"Inspire", "dental appliance",
	"ablation", "catheterization", "stent", "arthroscopy",
	"laser therapy", "orthotics", "telehealth",
}

var (
	specialtyPatterns = compileVocabulary(specialtyVocabulary)
	modalityPatterns  = compileVocabulary(modalityVocabulary)
)

// compileVocabulary builds one word-boundary pattern per term, keeping
// the slice parallel to the vocabulary so matches map back to the
// canonical spelling. Acronym terms match case-sensitively so that
// prose words like "act" never match ACT.
func compileVocabulary(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		flag := "(?i)"
		if term == strings.ToUpper(term) {
			flag = ""
		}
		out[i] = regexp.MustCompile(flag + `\b` + regexp.QuoteMeta(term) + `\b`)
	}
	return out
}

// specialtyTokens collects the specialties mentioned on a page, from
// visible text and from JSON-LD specialty properties. Tokens are
// lowercase.
func specialtyTokens(page *model.Page) []string {
	var out []string
	for i, pat := range specialtyPatterns {
		if pat.MatchString(page.Text) {
			out = append(out, specialtyVocabulary[i])
		}
	}
	for _, block := range page.StructuredBlocks {
		for _, value := range block.StringValues(structuredSpecialtyKeys...) {
			value = strings.ToLower(strings.TrimSpace(value))
			if value != "" {
				out = append(out, value)
			}
		}
	}
	return out
}

// modalityTokens collects the treatment modalities mentioned in the
// visible text of a page, in canonical spelling.
func modalityTokens(page *model.Page) []string {
	var out []string
	for i, pat := range modalityPatterns {
		if pat.MatchString(page.Text) {
			out = append(out, modalityVocabulary[i])
		}
	}
	return out
}
