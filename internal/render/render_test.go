package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klub-pratel/klub/model"
)

func TestRenderGenderSegments(t *testing.T) {
	template := "Vážen{ý|á} {pane|paní} ${surname}"

	male := Context{Profile: &model.Profile{LastName: "Novák", Sex: model.SexMale}}
	out, err := Render(template, male)
	assert.NoError(t, err)
	assert.Equal(t, "Vážený pane Novák", out)

	female := Context{Profile: &model.Profile{LastName: "Nováková", Sex: model.SexFemale}}
	out, err = Render(template, female)
	assert.NoError(t, err)
	assert.Equal(t, "Vážená paní Nováková", out)

	unknown := Context{Profile: &model.Profile{LastName: "Novák", Sex: model.SexUnknown}}
	out, err = Render(template, unknown)
	assert.NoError(t, err)
	assert.Equal(t, "Vážený/á pane/paní Novák", out)
}

func TestRenderSlashSeparator(t *testing.T) {
	ctx := Context{Profile: &model.Profile{Sex: model.SexFemale}}
	out, err := Render("mil{ý/á} příteli", ctx)
	assert.NoError(t, err)
	assert.Equal(t, "milá příteli", out)
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate("Vážen{ý|á} ${addressment}"))
	assert.NoError(t, ValidateTemplate("no segments at all"))

	err := ValidateTemplate("Vážen{ý.á}")
	assert.ErrorContains(t, err, "no separator")

	err = ValidateTemplate("Vážen{ý|á")
	assert.ErrorContains(t, err, "not closed")
}

func TestRenderPlaceholders(t *testing.T) {
	ctx := Context{
		Profile: &model.Profile{
			FirstName: "Jan",
			LastName:  "Novák",
			Email:     "jan@example.com",
			Street:    "Dlouhá 12",
			City:      "Praha",
			ZipCode:   "11000",
			Sex:       model.SexMale,
			Language:  model.LanguageCzech,
		},
		Channel: &model.PaymentChannel{
			VS:                "0000000042",
			RegularAmount:     300,
			RegularFrequency:  model.FrequencyMonthly,
			LastPaymentAmount: 150,
		},
		Telephone: "+420601234567",
		AuthToken: "tok-1",
	}

	out, err := Render(
		"${name} ${surname} ${email} ${street} ${city} ${zipcode} "+
			"${telephone} ${var_symbol} ${regular_amount} ${regular_frequency} "+
			"${last_payment_amount} ${auth_token}",
		ctx)
	assert.NoError(t, err)
	assert.Equal(t,
		"Jan Novák jan@example.com Dlouhá 12 Praha 11000 "+
			"+420601234567 0000000042 300 měsíčně 150 tok-1",
		out)
}

func TestRenderWithoutChannel(t *testing.T) {
	ctx := Context{Profile: &model.Profile{FirstName: "Anna", Sex: model.SexFemale}}
	out, err := Render("${name}: ${var_symbol}|${regular_amount}|${last_payment_amount}", ctx)
	assert.NoError(t, err)
	assert.Equal(t, "Anna: ||", out)
}

func TestRenderUnknownPlaceholderIsEmpty(t *testing.T) {
	ctx := Context{Profile: &model.Profile{}}
	out, err := Render("x${definitely_not_a_field}y", ctx)
	assert.NoError(t, err)
	assert.Equal(t, "xy", out)
}

func TestRenderFrequencyLocalization(t *testing.T) {
	channel := &model.PaymentChannel{RegularFrequency: model.FrequencyAnnually}

	czech := Context{
		Profile: &model.Profile{Language: model.LanguageCzech},
		Channel: channel,
	}
	out, err := Render("${regular_frequency}", czech)
	assert.NoError(t, err)
	assert.Equal(t, "ročně", out)

	english := Context{
		Profile: &model.Profile{Language: model.LanguageEnglish},
		Channel: channel,
	}
	out, err = Render("${regular_frequency}", english)
	assert.NoError(t, err)
	assert.Equal(t, "annually", out)
}

func TestAddressment(t *testing.T) {
	cases := []struct {
		name     string
		profile  model.Profile
		expected string
	}{
		{
			name:     "explicit addressment wins",
			profile:  model.Profile{Addressment: "pane doktore", FirstName: "Jan", Language: model.LanguageCzech},
			expected: "pane doktore",
		},
		{
			name:     "czech vocative of first name",
			profile:  model.Profile{FirstName: "Petr", Language: model.LanguageCzech},
			expected: "Petře",
		},
		{
			name:     "english keeps first name",
			profile:  model.Profile{FirstName: "Petr", Language: model.LanguageEnglish},
			expected: "Petr",
		},
		{
			name:     "czech fallback male",
			profile:  model.Profile{Sex: model.SexMale, Language: model.LanguageCzech},
			expected: "příteli klubu",
		},
		{
			name:     "czech fallback female",
			profile:  model.Profile{Sex: model.SexFemale, Language: model.LanguageCzech},
			expected: "přítelkyně klubu",
		},
		{
			name:     "czech fallback unknown",
			profile:  model.Profile{Sex: model.SexUnknown, Language: model.LanguageCzech},
			expected: "příteli/kyně klubu",
		},
		{
			name:     "english fallback",
			profile:  model.Profile{Language: model.LanguageEnglish},
			expected: "club friend",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := Context{Profile: &tc.profile}
			out, err := Render("${addressment}", ctx)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestRenderLastNameVokativ(t *testing.T) {
	ctx := Context{Profile: &model.Profile{LastName: "Novák"}}
	out, err := Render("${last_name_vokativ}", ctx)
	assert.NoError(t, err)
	assert.Equal(t, "Nováku", out)
}
