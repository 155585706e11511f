package documents

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/sunolegal/backend/pkg/models"
)

// Renderer turns a document type and its input data into file bytes. PDF
// engines are a swappable backend; the built-in renderer produces plain
// deterministic text from templates, which keeps the generate/store/
// download flow real without a rendering dependency.
type Renderer interface {
	Render(docType models.DocumentType, data map[string]any) ([]byte, string, error)
}

// ErrUnknownType reports an unsupported document type.
var ErrUnknownType = fmt.Errorf("documents: unknown document type")

var templates = map[models.DocumentType]*template.Template{
	models.DocRentAgreement: template.Must(template.New("rent_agreement").Parse(
		`RENT AGREEMENT

This Rent Agreement is made between {{.landlord_name}} (Landlord) and
{{.tenant_name}} (Tenant) for the premises at {{.property_address}}.

Monthly rent: Rs. {{.monthly_rent}}
Security deposit: Rs. {{.security_deposit}}
Term: {{.duration_months}} months starting {{.start_date}}.

Signed by both parties on the date first written above.
`)),
	models.DocLegalNotice: template.Must(template.New("legal_notice").Parse(
		`LEGAL NOTICE

To: {{.recipient_name}}, {{.recipient_address}}

Under instruction from my client {{.sender_name}}, I hereby serve you
notice regarding: {{.subject}}

{{.details}}

You are called upon to remedy the above within {{.deadline_days}} days of
receipt, failing which my client shall initiate appropriate legal
proceedings at your risk as to costs.
`)),
	models.DocAffidavit: template.Must(template.New("affidavit").Parse(
		`AFFIDAVIT

I, {{.deponent_name}}, aged {{.age}}, residing at {{.address}}, do hereby
solemnly affirm and declare as under:

{{.statement}}

I state that the contents of this affidavit are true to my knowledge and
belief and nothing material has been concealed.

Deponent
`)),
	models.DocConsumerComplaint: template.Must(template.New("consumer_complaint").Parse(
		`CONSUMER COMPLAINT

Complainant: {{.complainant_name}}, {{.complainant_address}}
Opposite party: {{.seller_name}}

Purchase: {{.product}} on {{.purchase_date}} for Rs. {{.amount_paid}}

Grievance: {{.grievance}}

Relief sought: {{.relief}}
`)),
}

// NewRenderer returns the template-backed renderer.
func NewRenderer() Renderer { return templateRenderer{} }

type templateRenderer struct{}

func (templateRenderer) Render(docType models.DocumentType, data map[string]any) ([]byte, string, error) {
	tpl, ok := templates[docType]
	if !ok {
		return nil, "", ErrUnknownType
	}
	// Missing keys render as "<no value>" rather than failing: the input
	// bag is caller-supplied and optional fields are common.
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("documents: render %s: %w", docType, err)
	}
	return buf.Bytes(), "application/pdf", nil
}
