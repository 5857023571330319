package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(value string) *time.Time {
	t := day(value)
	return &t
}

func regularChannel() PaymentChannel {
	return PaymentChannel{
		ChannelID:         "dpch_1",
		ProfileID:         "prf_1",
		EventID:           "evt_1",
		MoneyAccountID:    "acc_1",
		RegularPayments:   RegularPaymentsRegular,
		RegularFrequency:  FrequencyMonthly,
		RegularAmount:     200,
		RegisteredSupport: day("2015-12-16"),
	}
}

func TestExpectedPaymentDateFromLastPayment(t *testing.T) {
	ch := regularChannel()
	payments := []Payment{
		{PaymentID: "pay_1", Date: day("2016-02-05"), Amount: 200},
		{PaymentID: "pay_2", Date: day("2016-03-09"), Amount: 200},
	}

	expected := ch.ComputeExpectedPaymentDate(payments)
	require.NotNil(t, expected)
	assert.Equal(t, day("2016-04-09"), *expected)
}

func TestExpectedPaymentDateNoPaymentsYet(t *testing.T) {
	ch := regularChannel()

	expected := ch.ComputeExpectedPaymentDate(nil)
	require.NotNil(t, expected)
	assert.Equal(t, day("2016-01-16"), *expected)
}

func TestExpectedPaymentDateFirstPaymentPromised(t *testing.T) {
	ch := regularChannel()
	ch.ExpectedDateOfFirstPayment = dayPtr("2016-05-01")

	expected := ch.ComputeExpectedPaymentDate(nil)
	require.NotNil(t, expected)
	assert.Equal(t, day("2016-05-04"), *expected)
}

func TestExpectedPaymentDateNotBeforeFirstPromise(t *testing.T) {
	ch := regularChannel()
	ch.ExpectedDateOfFirstPayment = dayPtr("2016-06-01")
	payments := []Payment{
		{PaymentID: "pay_1", Date: day("2016-03-09"), Amount: 200},
	}

	expected := ch.ComputeExpectedPaymentDate(payments)
	require.NotNil(t, expected)
	assert.Equal(t, day("2016-06-01"), *expected)
}

func TestExpectedPaymentDateOnetimeChannel(t *testing.T) {
	ch := regularChannel()
	ch.RegularPayments = RegularPaymentsOnetime

	assert.Nil(t, ch.ComputeExpectedPaymentDate(nil))
}

func TestComputeDelay(t *testing.T) {
	ch := regularChannel()
	payments := []Payment{
		{PaymentID: "pay_1", Date: day("2016-01-10"), Amount: 200},
	}

	// expected 2016-02-10, grace until 2016-02-20
	_, late := ch.ComputeDelay(payments, day("2016-02-15"))
	assert.False(t, late)

	delay, late := ch.ComputeDelay(payments, day("2016-02-25"))
	assert.True(t, late)
	assert.Equal(t, 5*24*time.Hour, delay)
}

func TestComputeExtraMoney(t *testing.T) {
	ch := regularChannel()
	today := day("2016-03-15")

	payments := []Payment{
		{PaymentID: "pay_1", Date: day("2016-01-05"), Amount: 200},
		{PaymentID: "pay_2", Date: day("2016-03-01"), Amount: 200},
		{PaymentID: "pay_3", Date: day("2016-03-10"), Amount: 300},
	}
	extra := ch.ComputeExtraMoney(payments, today)
	require.NotNil(t, extra)
	assert.Equal(t, int64(300), *extra)

	onPledge := []Payment{
		{PaymentID: "pay_2", Date: day("2016-03-01"), Amount: 200},
	}
	assert.Nil(t, ch.ComputeExtraMoney(onPledge, today))
}

func TestComputeNoUpgrade(t *testing.T) {
	ch := regularChannel()
	today := day("2017-02-01")

	stagnant := []Payment{
		{PaymentID: "pay_1", Date: day("2016-01-15"), Amount: 200},
		{PaymentID: "pay_2", Date: day("2017-01-20"), Amount: 200},
	}
	assert.True(t, ch.ComputeNoUpgrade(stagnant, today))

	raised := []Payment{
		{PaymentID: "pay_1", Date: day("2016-01-15"), Amount: 200},
		{PaymentID: "pay_2", Date: day("2017-01-20"), Amount: 500},
	}
	assert.False(t, ch.ComputeNoUpgrade(raised, today))

	lapsed := []Payment{
		{PaymentID: "pay_1", Date: day("2016-01-15"), Amount: 200},
	}
	assert.False(t, ch.ComputeNoUpgrade(lapsed, today))
}

func TestLatestPaymentTieBreak(t *testing.T) {
	payments := []Payment{
		{PaymentID: "pay_1", Date: day("2016-03-09"), Amount: 100},
		{PaymentID: "pay_2", Date: day("2016-03-09"), Amount: 250},
	}

	latest := LatestPayment(payments)
	require.NotNil(t, latest)
	assert.Equal(t, "pay_2", latest.PaymentID)
}

func TestYearlyRegularAmount(t *testing.T) {
	ch := regularChannel()
	assert.Equal(t, int64(2400), ch.YearlyRegularAmount())

	ch.RegularFrequency = FrequencyQuarterly
	assert.Equal(t, int64(800), ch.YearlyRegularAmount())

	ch.RegularFrequency = ""
	assert.Equal(t, int64(0), ch.YearlyRegularAmount())
}

func TestRecomputeDerived(t *testing.T) {
	ch := regularChannel()
	payments := []Payment{
		{PaymentID: "pay_1", Date: day("2016-02-05"), Amount: 200},
		{PaymentID: "pay_2", Date: day("2016-03-09"), Amount: 250},
	}

	ch.RecomputeDerived(payments, day("2016-03-15"))

	assert.Equal(t, 2, ch.NumberOfPayments)
	assert.Equal(t, int64(450), ch.PaymentTotal)
	assert.Equal(t, "pay_2", ch.LastPaymentID)
	require.NotNil(t, ch.LastPaymentDate)
	assert.Equal(t, day("2016-03-09"), *ch.LastPaymentDate)
	assert.Equal(t, int64(250), ch.LastPaymentAmount)
	require.NotNil(t, ch.ExpectedRegularPaymentDate)
	assert.Equal(t, day("2016-04-09"), *ch.ExpectedRegularPaymentDate)
	require.NotNil(t, ch.ExtraMoney)
	assert.Equal(t, int64(50), *ch.ExtraMoney)

	ch.RecomputeDerived(nil, day("2016-03-15"))
	assert.Equal(t, 0, ch.NumberOfPayments)
	assert.Empty(t, ch.LastPaymentID)
	assert.Nil(t, ch.LastPaymentDate)
	assert.Nil(t, ch.ExtraMoney)
}

func TestPaymentChannelValidate(t *testing.T) {
	ch := regularChannel()
	assert.NoError(t, ch.Validate())

	ch.MoneyAccountID = ""
	assert.Error(t, ch.Validate())

	ch = regularChannel()
	ch.RegularFrequency = "weekly"
	assert.Error(t, ch.Validate())
}
