package parser

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klub-pratel/klub/model"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParseFio(t *testing.T) {
	statement, err := Parse(model.StatementAccount, loadFixture(t, "fio_statement.csv"))
	require.NoError(t, err)

	assert.Equal(t, "2400063333", statement.Header.AccountNumber)
	require.NotNil(t, statement.Header.DateFrom)
	require.NotNil(t, statement.Header.DateTo)
	assert.Equal(t, time.Date(2016, 1, 25, 0, 0, 0, 0, time.UTC), *statement.Header.DateFrom)
	assert.Equal(t, time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC), *statement.Header.DateTo)

	// the outgoing transfer is dropped
	require.Len(t, statement.Rows, 4)

	first := statement.Rows[0]
	assert.Equal(t, "2150508001", first.Account)
	assert.Equal(t, "5500", first.BankCode)
	assert.Equal(t, "120127010", first.VS)
	assert.Equal(t, "0558", first.KS)
	assert.Equal(t, int64(100), first.Amount)
	assert.Equal(t, "Novák, Jan", first.AccountName)
	assert.Equal(t, "RZBCCZPP", first.BIC)
	assert.Equal(t, "10000000001", first.OperationID)
	assert.Equal(t, "přítel klubu", first.Message)
}

func TestParseFioMissingHeader(t *testing.T) {
	_, err := Parse(model.StatementAccount, []byte("accountId;123\n"))
	assert.Error(t, err)
}

func TestParseCeskaSporitelna(t *testing.T) {
	statement, err := Parse(model.StatementAccountCS, loadFixture(t, "cs_statement.csv"))
	require.NoError(t, err)

	assert.Equal(t, "2300063333", statement.Header.AccountNumber)
	require.NotNil(t, statement.Header.DateFrom)
	assert.Equal(t, time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC), *statement.Header.DateFrom)

	require.Len(t, statement.Rows, 2)
	assert.Equal(t, int64(350), statement.Rows[0].Amount)
	assert.Equal(t, "120127010", statement.Rows[0].VS)
	assert.Equal(t, "přítel klubu", statement.Rows[0].Message)
	// thousands space and short bank code
	assert.Equal(t, int64(1200), statement.Rows[1].Amount)
	assert.Equal(t, "0800", statement.Rows[1].BankCode)
}

func TestParseKomercniBanka(t *testing.T) {
	statement, err := Parse(model.StatementAccountKB, loadFixture(t, "kb_statement.csv"))
	require.NoError(t, err)

	assert.Equal(t, "2500063333", statement.Header.AccountNumber)
	require.NotNil(t, statement.Header.DateTo)
	assert.Equal(t, time.Date(2016, 3, 31, 0, 0, 0, 0, time.UTC), *statement.Header.DateTo)

	require.Len(t, statement.Rows, 2)
	assert.Equal(t, "2150508001", statement.Rows[0].Account)
	assert.Equal(t, "5500", statement.Rows[0].BankCode)
	assert.Equal(t, "0558", statement.Rows[0].KS)
	assert.Equal(t, "0100", statement.Rows[1].BankCode)
}

func TestParseCSOB(t *testing.T) {
	statement, err := Parse(model.StatementAccountCSOB, loadFixture(t, "csob_statement.csv"))
	require.NoError(t, err)

	assert.Equal(t, "2600063333", statement.Header.AccountNumber)
	require.NotNil(t, statement.Header.DateFrom)
	assert.Equal(t, time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC), *statement.Header.DateFrom)
	assert.Equal(t, time.Date(2016, 4, 30, 0, 0, 0, 0, time.UTC), *statement.Header.DateTo)

	require.Len(t, statement.Rows, 2)
	assert.Equal(t, int64(600), statement.Rows[0].Amount)
	assert.Equal(t, "120127010", statement.Rows[0].VS)
	assert.Equal(t, "0300", statement.Rows[1].BankCode)
}

func TestParseSberbank(t *testing.T) {
	statement, err := Parse(model.StatementAccountSberbank, loadFixture(t, "sberbank_statement.txt"))
	require.NoError(t, err)

	// the outgoing row is filtered on the localized type column
	require.Len(t, statement.Rows, 2)
	assert.Equal(t, time.Date(2016, 5, 2, 0, 0, 0, 0, time.UTC), statement.Rows[0].Date)
	assert.Equal(t, int64(700), statement.Rows[0].Amount)
	assert.Equal(t, "120127010", statement.Rows[0].VS)
	assert.Equal(t, "0100", statement.Rows[1].BankCode)
	assert.Empty(t, statement.Header.AccountNumber)
}

func TestParseRaiffeisenbank(t *testing.T) {
	statement, err := Parse(model.StatementAccountRB, loadFixture(t, "rb_statement.csv"))
	require.NoError(t, err)

	require.Len(t, statement.Rows, 2)
	assert.Equal(t, time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC), statement.Rows[0].Date)
	assert.Equal(t, "2150508001", statement.Rows[0].Account)
	assert.Equal(t, "5500", statement.Rows[0].BankCode)
	assert.Equal(t, "RB0001", statement.Rows[0].OperationID)
	// counter account without a bank code
	assert.Equal(t, "2150508009", statement.Rows[1].Account)
	assert.Empty(t, statement.Rows[1].BankCode)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(model.StatementType("account_unknown"), nil)
	assert.ErrorContains(t, err, "unsupported statement format")
}

func TestParseDarujmeXML(t *testing.T) {
	records, err := ParseDarujme(loadFixture(t, "darujme.xml"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "18001", first.RecordID)
	assert.Equal(t, "OK", first.State)
	assert.Equal(t, "mesicni", first.Frequency)
	assert.Equal(t, "jan.novak@example.com", first.Email)

	amount, err := first.Amount()
	require.NoError(t, err)
	assert.Equal(t, int64(200), amount)

	date, err := first.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 1, 20, 10, 11, 12, 0, time.UTC), date)

	require.Len(t, first.Payments, 2)
	assert.Equal(t, "TRX-18001-1", first.Payments[0].TransactionID)
	entryDate, err := first.Payments[0].Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 1, 21, 0, 0, 0, 0, time.UTC), entryDate)

	require.Len(t, records[1].Payments, 1)
	assert.Equal(t, "jednorazove", records[1].Frequency)
}

func TestParseDarujmeJSON(t *testing.T) {
	records, err := ParseDarujme(loadFixture(t, "darujme.json"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "18001", records[0].RecordID)
	require.Len(t, records[0].Payments, 1)
}

func TestParseDarujmeGarbage(t *testing.T) {
	_, err := ParseDarujme([]byte("  \n"))
	assert.Error(t, err)
	_, err = ParseDarujme([]byte("not a document"))
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100,00", want: 100},
		{in: "1 200,50", want: 1201},
		{in: "-1520,00", want: -1520},
		{in: "250", want: 250},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPadCode(t *testing.T) {
	assert.Equal(t, "0100", padCode("100"))
	assert.Equal(t, "5500", padCode("5500"))
	assert.Equal(t, "0558", padCode("558"))
	assert.Equal(t, "", padCode("  "))
}

func TestSplitCounterAccount(t *testing.T) {
	account, bankCode := splitCounterAccount("999999/1111")
	assert.Equal(t, "999999", account)
	assert.Equal(t, "1111", bankCode)

	account, bankCode = splitCounterAccount("999999")
	assert.Equal(t, "999999", account)
	assert.Empty(t, bankCode)

	account, bankCode = splitCounterAccount("999999/111")
	assert.Equal(t, "0111", bankCode)
	assert.Equal(t, "999999", account)
}
