package portal

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// MsgInvoicePaid confirms a successful portal payment.
const MsgInvoicePaid = "invoice.paid"

var translations = map[language.Tag]map[string]string{
	language.BritishEnglish:  {MsgInvoicePaid: "Invoice paid successfully."},
	language.AmericanEnglish: {MsgInvoicePaid: "Invoice paid successfully."},
	language.French:          {MsgInvoicePaid: "Facture payée avec succès."},
	language.German:          {MsgInvoicePaid: "Rechnung erfolgreich bezahlt."},
}

// Messages resolves portal message keys for a locale.
type Messages struct {
	catalog  catalog.Catalog
	fallback language.Tag
}

// NewMessages builds the catalog with locale as the default language.
func NewMessages(locale string) (*Messages, error) {
	fallback, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("portal: locale %q: %w", locale, err)
	}
	b := catalog.NewBuilder(catalog.Fallback(language.BritishEnglish))
	for tag, entries := range translations {
		for key, text := range entries {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, err
			}
		}
	}
	return &Messages{catalog: b, fallback: fallback}, nil
}

// Text returns key translated for the Accept-Language header value, falling
// back to the configured locale.
func (m *Messages) Text(acceptLanguage, key string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		tags = nil
	}
	tags = append(tags, m.fallback)
	tag := language.BritishEnglish
	if _, idx, confidence := m.catalog.Matcher().Match(tags...); confidence != language.No {
		tag = m.catalog.Languages()[idx]
	}
	return message.NewPrinter(tag, message.Catalog(m.catalog)).Sprintf(key)
}
