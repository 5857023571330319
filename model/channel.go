package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type RegularPayments string

const (
	RegularPaymentsRegular RegularPayments = "regular"
	RegularPaymentsOnetime RegularPayments = "onetime"
	RegularPaymentsPromise RegularPayments = "promise"
)

type RegularFrequency string

const (
	FrequencyMonthly    RegularFrequency = "monthly"
	FrequencyQuarterly  RegularFrequency = "quarterly"
	FrequencyBiannually RegularFrequency = "biannually"
	FrequencyAnnually   RegularFrequency = "annually"
)

// frequencyIntervalDays is the pause the club tolerates between two regular
// payments before the supporter counts as late.
var frequencyIntervalDays = map[RegularFrequency]int{
	FrequencyMonthly:    31,
	FrequencyQuarterly:  92,
	FrequencyBiannually: 183,
	FrequencyAnnually:   366,
}

var frequencyPerYear = map[RegularFrequency]int64{
	FrequencyMonthly:    12,
	FrequencyQuarterly:  4,
	FrequencyBiannually: 2,
	FrequencyAnnually:   1,
}

// PaymentChannel is one supporter's subscription to one event through one
// money account. Uniqueness: (VS, money account) when VS is set, and
// (profile, event) always.
type PaymentChannel struct {
	ID                         int64            `json:"-"`
	ChannelID                  string           `json:"id"`
	ProfileID                  string           `json:"profile_id"`
	EventID                    string           `json:"event_id"`
	MoneyAccountID             string           `json:"money_account_id"`
	UserBankAccountID          string           `json:"user_bank_account_id,omitempty"`
	VS                         string           `json:"vs,omitempty"`
	SS                         string           `json:"ss,omitempty"`
	RegularPayments            RegularPayments  `json:"regular_payments"`
	RegularFrequency           RegularFrequency `json:"regular_frequency,omitempty"`
	RegularAmount              int64            `json:"regular_amount,omitempty"`
	ExpectedDateOfFirstPayment *time.Time       `json:"expected_date_of_first_payment,omitempty"`
	EndOfRegularPayments       *time.Time       `json:"end_of_regular_payments,omitempty"`
	RegisteredSupport          time.Time        `json:"registered_support"`

	// materialized derived state, recomputed whenever the payment set changes
	NumberOfPayments           int        `json:"number_of_payments"`
	PaymentTotal               int64      `json:"payment_total"`
	LastPaymentID              string     `json:"last_payment_id,omitempty"`
	LastPaymentDate            *time.Time `json:"last_payment_date,omitempty"`
	LastPaymentAmount          int64      `json:"last_payment_amount,omitempty"`
	ExpectedRegularPaymentDate *time.Time `json:"expected_regular_payment_date,omitempty"`
	ExtraMoney                 *int64     `json:"extra_money,omitempty"`
	NoUpgrade                  bool       `json:"no_upgrade"`
}

func (c *PaymentChannel) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ProfileID, validation.Required),
		validation.Field(&c.EventID, validation.Required),
		validation.Field(&c.MoneyAccountID, validation.Required),
		validation.Field(&c.RegularPayments, validation.Required,
			validation.In(RegularPaymentsRegular, RegularPaymentsOnetime, RegularPaymentsPromise)),
		validation.Field(&c.RegularFrequency, validation.When(c.RegularFrequency != "",
			validation.In(FrequencyMonthly, FrequencyQuarterly, FrequencyBiannually, FrequencyAnnually))),
	)
}

// IsRegular reports whether the supporter pledged recurring payments.
func (c *PaymentChannel) IsRegular() bool {
	return c.RegularPayments == RegularPaymentsRegular
}

// FrequencyInterval returns the tolerated gap between regular payments, or
// false when no frequency is set.
func (c *PaymentChannel) FrequencyInterval() (time.Duration, bool) {
	days, ok := frequencyIntervalDays[c.RegularFrequency]
	if !ok {
		return 0, false
	}
	return time.Duration(days) * 24 * time.Hour, true
}

// YearlyRegularAmount is the pledged amount scaled to a year.
func (c *PaymentChannel) YearlyRegularAmount() int64 {
	mult, ok := frequencyPerYear[c.RegularFrequency]
	if !ok {
		return 0
	}
	return c.RegularAmount * mult
}

// LatestPayment returns the payment with the latest date. Ties are broken
// by position: the later element of the slice wins, which matches insertion
// order for payments loaded in id order.
func LatestPayment(payments []Payment) *Payment {
	var latest *Payment
	for i := range payments {
		if latest == nil || !payments[i].Date.Before(latest.Date) {
			latest = &payments[i]
		}
	}
	return latest
}

// ComputeExpectedPaymentDate derives when the next regular payment is due.
// Defined only for regular channels; returns nil otherwise.
func (c *PaymentChannel) ComputeExpectedPaymentDate(payments []Payment) *time.Time {
	if !c.IsRegular() {
		return nil
	}
	if last := LatestPayment(payments); last != nil {
		interval, ok := c.FrequencyInterval()
		if !ok {
			return nil
		}
		expected := last.Date.Add(interval)
		if c.ExpectedDateOfFirstPayment != nil && expected.Before(*c.ExpectedDateOfFirstPayment) {
			expected = *c.ExpectedDateOfFirstPayment
		}
		return &expected
	}
	if c.ExpectedDateOfFirstPayment != nil {
		expected := c.ExpectedDateOfFirstPayment.AddDate(0, 0, 3)
		return &expected
	}
	expected := truncateToDay(c.RegisteredSupport).AddDate(0, 0, 31)
	return &expected
}

// ComputeDelay returns how long the supporter is overdue past the ten day
// grace period. The second result is false when the channel is not late.
func (c *PaymentChannel) ComputeDelay(payments []Payment, today time.Time) (time.Duration, bool) {
	expected := c.ComputeExpectedPaymentDate(payments)
	if expected == nil {
		return 0, false
	}
	delay := today.Sub(expected.AddDate(0, 0, 10))
	if delay <= 0 {
		return 0, false
	}
	return delay, true
}

// ComputeExtraMoney sums payments inside the current frequency window and
// reports the amount above the pledge, or nil when nothing extra arrived.
func (c *PaymentChannel) ComputeExtraMoney(payments []Payment, today time.Time) *int64 {
	if !c.IsRegular() {
		return nil
	}
	interval, ok := c.FrequencyInterval()
	if !ok {
		return nil
	}
	window := today.Add(-interval).AddDate(0, 0, 3)
	var sum int64
	for i := range payments {
		if payments[i].Date.After(window) {
			sum += payments[i].Amount
		}
	}
	if sum > c.RegularAmount {
		extra := sum - c.RegularAmount
		return &extra
	}
	return nil
}

// ComputeNoUpgrade reports whether a regular supporter has paid recently but
// has not raised the amount in at least a year: the newest payment that is a
// year or more old carries the same amount as the current newest payment.
func (c *PaymentChannel) ComputeNoUpgrade(payments []Payment, today time.Time) bool {
	if !c.IsRegular() {
		return false
	}
	current := LatestPayment(payments)
	if current == nil || current.Date.Before(today.AddDate(0, 0, -45)) {
		return false
	}
	var yearOld *Payment
	cutoff := today.AddDate(0, 0, -365)
	for i := range payments {
		if payments[i].Date.After(cutoff) {
			continue
		}
		if yearOld == nil || !payments[i].Date.Before(yearOld.Date) {
			yearOld = &payments[i]
		}
	}
	if yearOld == nil {
		return false
	}
	return yearOld.Amount == current.Amount
}

// RecomputeDerived refreshes all materialized fields from the channel's
// payment set. Callers persist the result inside the same transaction as the
// payment change that triggered it.
func (c *PaymentChannel) RecomputeDerived(payments []Payment, today time.Time) {
	c.NumberOfPayments = len(payments)
	c.PaymentTotal = 0
	for i := range payments {
		c.PaymentTotal += payments[i].Amount
	}
	if last := LatestPayment(payments); last != nil {
		c.LastPaymentID = last.PaymentID
		d := last.Date
		c.LastPaymentDate = &d
		c.LastPaymentAmount = last.Amount
	} else {
		c.LastPaymentID = ""
		c.LastPaymentDate = nil
		c.LastPaymentAmount = 0
	}
	c.ExpectedRegularPaymentDate = c.ComputeExpectedPaymentDate(payments)
	c.ExtraMoney = c.ComputeExtraMoney(payments, today)
	c.NoUpgrade = c.ComputeNoUpgrade(payments, today)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
