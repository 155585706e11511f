package chat

import (
	"os"
	"strings"
)

const disclaimer = "For personalized legal advice, please consult a verified lawyer on our platform."

// Assistant is the boundary to the legal-information model. The real
// implementation calls an external LLM; the built-in one answers from a
// small keyword map so the chat flow works in dev and test without a
// provider key.
type Assistant interface {
	Reply(history []Turn, message string) (string, error)
}

// Turn mirrors one stored chat message for the assistant's context.
type Turn struct {
	Role    string
	Content string
}

// NewAssistant returns the built-in assistant unless an external provider
// is configured. Wiring a hosted model means implementing Assistant
// against its API and selecting it here.
func NewAssistant() Assistant {
	_ = os.Getenv("LLM_API_KEY") // reserved for a hosted-model implementation
	return rulebook{}
}

type rulebook struct{}

var cannedReplies = []struct {
	keywords []string
	reply    string
}{
	{
		[]string{"rent", "tenant", "landlord", "eviction"},
		"Tenants are protected by state Rent Control Acts and the Model Tenancy Act, 2021. A written, registered rent agreement is your strongest protection: it fixes the rent, the notice period, and the security deposit (typically capped at 2-3 months). A landlord cannot evict you without due notice and a court order.",
	},
	{
		[]string{"consumer", "refund", "defective", "warranty"},
		"The Consumer Protection Act, 2019 covers defective goods and deficient services, including e-commerce purchases. Keep your receipt and written complaint; you can file before the District, State, or National Consumer Commission depending on the claim value.",
	},
	{
		[]string{"fir", "police", "arrest", "complaint"},
		"You have the right to file an FIR at any police station for a cognizable offence; the police cannot refuse to register it. If they do, you may approach the Superintendent of Police or a magistrate under CrPC section 156(3). Always take a stamped copy of the FIR.",
	},
	{
		[]string{"rti", "information", "government"},
		"Under the RTI Act, 2005, any citizen can request information from a public authority for a fee of Rs. 10. The Public Information Officer must respond within 30 days; appeals go first to the departmental appellate authority, then to the Information Commission.",
	},
}

func (rulebook) Reply(_ []Turn, message string) (string, error) {
	lower := strings.ToLower(message)
	for _, entry := range cannedReplies {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.reply + "\n\n" + disclaimer, nil
			}
		}
	}
	return "I can share general information about Indian law: tenant rights, consumer protection, police procedures, RTI, government schemes, property and employment matters. Could you tell me a little more about your situation?\n\n" + disclaimer, nil
}
