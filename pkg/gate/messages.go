package gate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/invoiceaz/planguard/pkg/entitlement"
)

const (
	msgLimitTitle     = "gate.limit.title"
	msgLimitBody      = "gate.limit.message"
	msgUnlimitedBody  = "gate.limit.message_unknown"
	msgFeatureTitle   = "gate.feature.title"
	msgFeatureBody    = "gate.feature.message"
	msgGenericFailure = "gate.error.generic"
)

// DefaultErrorMessage is shown when a failed mutation carries no server detail.
const DefaultErrorMessage = "Xəta baş verdi"

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Azerbaijani))
	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}

	az, en := language.Azerbaijani, language.English

	set(az, msgLimitTitle, "Limitə çatdınız!")
	set(en, msgLimitTitle, "You have reached your limit!")
	set(az, msgLimitBody, "Hazırkı planınızda maksimum %[1]d %[2]s yaratmaq mümkündür. Limitsiz imkanlar üçün Pro plana keçin.")
	set(en, msgLimitBody, "Your current plan allows up to %[1]d %[2]s. Upgrade to Pro for unlimited access.")
	set(az, msgUnlimitedBody, "Hazırkı planınızın %[1]s limiti dolub. Limitsiz imkanlar üçün Pro plana keçin.")
	set(en, msgUnlimitedBody, "Your current plan's %[1]s limit is used up. Upgrade to Pro for unlimited access.")
	set(az, msgFeatureTitle, "Premium funksiya")
	set(en, msgFeatureTitle, "Premium feature")
	set(az, msgFeatureBody, "%[1]s yalnız Pro və Premium paketlərdə mövcuddur. Bu funksiyanı aktivləşdirmək üçün planınızı yüksəldin.")
	set(en, msgFeatureBody, "%[1]s is available on the Pro and Premium plans only. Upgrade to activate this feature.")
	set(az, msgGenericFailure, DefaultErrorMessage)
	set(en, msgGenericFailure, "Something went wrong")

	for src, dst := range serverMessages {
		set(az, src, dst)
		set(en, src, src)
	}
	return b
}

// serverMessages are stock API error texts with their Azerbaijani wording.
var serverMessages = map[string]string{
	"You do not have permission to perform this action.":                  "Sizin bu əməliyyatı yerinə yetirmək üçün icazəniz yoxdur.",
	"Authentication credentials were not provided.":                       "Giriş məlumatları təmin edilməyib.",
	"Not found.":                                                          "Tapılmadı.",
	"Method not allowed.":                                                 "Bu metod icazə verilmir.",
	"Invalid token.":                                                      "Yanlış token.",
	"User is inactive.":                                                   "İstifadəçi aktiv deyil.",
	"Network Error":                                                       "Şəbəkə xətası baş verdi.",
	"This field is required.":                                             "Bu sahə məcburidir.",
	"This field may not be blank.":                                        "Bu sahə boş qala bilməz.",
	"Enter a valid email address.":                                        "Düzgün e-poçt ünvanı daxil edin.",
	"A user with that email already exists.":                              "Bu e-poçt ilə artıq hesab mövcuddur.",
	"This password is too short. It must contain at least 8 characters.": "Şifrə çox qısadır. Ən azı 8 simvol olmalıdır.",
}

// copywriter renders prompt and error text in one language.
type copywriter struct {
	tag     language.Tag
	printer *message.Printer
}

func newCopywriter(tag language.Tag) copywriter {
	tag = entitlement.MatchLang(tag).Tag()
	return copywriter{tag: tag, printer: message.NewPrinter(tag, message.Catalog(messages))}
}

func (c copywriter) limitPrompt(p UpgradePrompt) UpgradePrompt {
	p.Title = c.printer.Sprintf(msgLimitTitle)
	if n, ok := p.Limit.Value(); ok {
		p.Message = c.printer.Sprintf(msgLimitBody, n, p.DisplayName)
	} else {
		p.Message = c.printer.Sprintf(msgUnlimitedBody, p.DisplayName)
	}
	return p
}

func (c copywriter) featurePrompt(p UpgradePrompt, title, msg string) UpgradePrompt {
	p.Title = title
	if p.Title == "" {
		p.Title = c.printer.Sprintf(msgFeatureTitle)
	}
	p.Message = msg
	if p.Message == "" {
		p.Message = c.printer.Sprintf(msgFeatureBody, p.DisplayName)
	}
	return p
}

func (c copywriter) genericFailure() string {
	return c.printer.Sprintf(msgGenericFailure)
}

// serverMessage localizes stock server texts and passes others through untouched.
func (c copywriter) serverMessage(msg string) string {
	if _, known := serverMessages[msg]; !known {
		return msg
	}
	return c.printer.Sprintf(msg)
}
