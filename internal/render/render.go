// Package render fills communication templates with supporter and payment
// channel context. Templates carry $name placeholders and gendered
// alternatives such as {pane|pani}.
package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/klub-pratel/klub/internal/vokativ"
	"github.com/klub-pratel/klub/model"
)

// frequencyCzech is the display table for regular_frequency, lower-cased
// for Czech templates. Other languages get the raw enum tag.
var frequencyCzech = map[model.RegularFrequency]string{
	model.FrequencyMonthly:    "měsíčně",
	model.FrequencyQuarterly:  "čtvrtletně",
	model.FrequencyBiannually: "pololetně",
	model.FrequencyAnnually:   "ročně",
}

// Context carries everything a template may reference. Channel is optional;
// without it the payment-related placeholders resolve to empty.
type Context struct {
	Profile   *model.Profile
	Channel   *model.PaymentChannel
	Telephone string
	AuthToken string
}

// Render substitutes placeholders and resolves gender segments. The
// template must have passed ValidateTemplate when the rule was saved;
// malformed gender segments still return an error here.
func Render(template string, ctx Context) (string, error) {
	resolved, err := resolveGenderSegments(template, ctx.Profile.Sex)
	if err != nil {
		return "", err
	}
	return os.Expand(resolved, func(name string) string {
		return ctx.placeholder(name)
	}), nil
}

// ValidateTemplate rejects malformed gender segments at rule save time.
func ValidateTemplate(template string) error {
	_, err := resolveGenderSegments(template, model.SexUnknown)
	return err
}

func (ctx Context) placeholder(name string) string {
	p := ctx.Profile
	switch name {
	case "addressment":
		return ctx.addressment()
	case "last_name_vokativ":
		return vokativ.Vocative(p.LastName)
	case "name", "firstname":
		return p.FirstName
	case "surname":
		return p.LastName
	case "street":
		return p.Street
	case "city":
		return p.City
	case "zipcode":
		return p.ZipCode
	case "email":
		return p.Email
	case "telephone":
		return ctx.Telephone
	case "auth_token":
		return ctx.AuthToken
	case "regular_amount":
		if ctx.Channel == nil {
			return ""
		}
		return strconv.FormatInt(ctx.Channel.RegularAmount, 10)
	case "regular_frequency":
		if ctx.Channel == nil {
			return ""
		}
		return ctx.frequency()
	case "var_symbol":
		if ctx.Channel == nil {
			return ""
		}
		return ctx.Channel.VS
	case "last_payment_amount":
		if ctx.Channel == nil {
			return ""
		}
		return strconv.FormatInt(ctx.Channel.LastPaymentAmount, 10)
	default:
		// unknown placeholders render empty rather than leaking $names
		return ""
	}
}

func (ctx Context) frequency() string {
	freq := ctx.Channel.RegularFrequency
	if freq == "" {
		return ""
	}
	if ctx.Profile.Language == model.LanguageCzech {
		if localized, ok := frequencyCzech[freq]; ok {
			return localized
		}
	}
	return string(freq)
}

// addressment resolves in order: explicit per-profile addressment, vocative
// of the first name, a Czech sex-dependent phrase, a language default.
func (ctx Context) addressment() string {
	p := ctx.Profile
	if p.Addressment != "" {
		return p.Addressment
	}
	if p.FirstName != "" {
		if p.Language == model.LanguageCzech {
			return vokativ.Vocative(p.FirstName)
		}
		return p.FirstName
	}
	if p.Language == model.LanguageCzech {
		switch p.Sex {
		case model.SexMale:
			return "příteli klubu"
		case model.SexFemale:
			return "přítelkyně klubu"
		default:
			return "příteli/kyně klubu"
		}
	}
	return "club friend"
}

// resolveGenderSegments replaces {male|female} (separator | or /) with the
// variant for the given sex; unknown sex emits "male/female". Segments
// without a separator are a validation error. A brace preceded by $ is a
// ${name} placeholder and passes through for os.Expand.
func resolveGenderSegments(template string, sex model.Sex) (string, error) {
	var out strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		if start > 0 && rest[start-1] == '$' {
			out.WriteString(rest[:start+1])
			rest = rest[start+1:]
			continue
		}
		out.WriteString(rest[:start])
		rest = rest[start+1:]

		end := strings.IndexByte(rest, '}')
		sep := strings.IndexAny(rest, "|/")
		if end < 0 {
			return "", fmt.Errorf("gender segment is not closed")
		}
		if sep < 0 || sep > end {
			return "", fmt.Errorf("gender segment %q has no separator", "{"+rest[:end+1])
		}

		male := rest[:sep]
		female := rest[sep+1 : end]
		switch sex {
		case model.SexMale:
			out.WriteString(male)
		case model.SexFemale:
			out.WriteString(female)
		default:
			out.WriteString(male + "/" + female)
		}
		rest = rest[end+1:]
	}
}
