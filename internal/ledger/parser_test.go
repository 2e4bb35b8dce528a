package ledger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/ledger"
)

const header = "player_nickname,player_id,session_start_at,session_end_at,buy_in,buy_out,stack,net"

func TestParse_SingleRow(t *testing.T) {
	csv := header + "\n" +
		"alice,1,2024-01-01T00:00,2024-01-01T04:00,100,150,150,50\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, 0, result.SkippedRows)

	s := result.Sessions[0]
	assert.Equal(t, "alice", s.PlayerNickname)
	assert.Equal(t, "1", s.PlayerID)
	assert.Equal(t, int64(100), s.BuyInCents)
	assert.Equal(t, int64(150), s.BuyOutCents)
	assert.Equal(t, int64(150), s.StackCents)
	assert.Equal(t, int64(50), s.NetCents)
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	csv := "player_nickname,player_id,session_start_at,session_end_at,buy_in,buy_out,stack\n" +
		"alice,1,a,b,100,150,150\n"

	_, err := ledger.Parse(strings.NewReader(csv))
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMalformedInput, appErr.Code)
	assert.Contains(t, appErr.Message, "net")
}

func TestParse_QuotedFieldWithComma(t *testing.T) {
	csv := header + "\n" +
		"\"smith, bob\",2,a,b,200,180,180,-20\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "smith, bob", result.Sessions[0].PlayerNickname)
	assert.Equal(t, int64(-20), result.Sessions[0].NetCents)
}

func TestParse_HeaderWithQuotesAndWhitespace(t *testing.T) {
	csv := `"player_nickname", "player_id" ,session_start_at,session_end_at,"buy_in",buy_out,stack,net` + "\n" +
		"alice,1,a,b,100,150,150,50\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, result.Sessions, 1)
}

func TestParse_SkipsDefectiveRows(t *testing.T) {
	csv := header + "\n" +
		"alice,1,a,b,100,150,150,50\n" +
		"bob,2,a,b,100,150,150\n" + // field count mismatch
		",3,a,b,100,150,150,50\n" + // empty nickname
		"carol,4,a,b,abc,150,150,50\n" + // unparseable buy_in
		"dave,5,a,b,100,150,150,50\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, result.Sessions, 2)
	assert.Equal(t, 3, result.SkippedRows)
	assert.Equal(t, "alice", result.Sessions[0].PlayerNickname)
	assert.Equal(t, "dave", result.Sessions[1].PlayerNickname)
}

func TestParse_LenientNumericCoercion(t *testing.T) {
	// Junk in buy_out/stack/net coerces to 0 instead of failing the file.
	csv := header + "\n" +
		"alice,1,a,b,100,junk,,oops\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)

	s := result.Sessions[0]
	assert.Equal(t, int64(100), s.BuyInCents)
	assert.Equal(t, int64(0), s.BuyOutCents)
	assert.Equal(t, int64(0), s.StackCents)
	assert.Equal(t, int64(0), s.NetCents)
}

func TestParse_SkipsEmptyLines(t *testing.T) {
	csv := header + "\n\n" +
		"alice,1,a,b,100,150,150,50\n" +
		"\r\n" +
		"bob,2,a,b,100,90,90,-10\n\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, result.Sessions, 2)
	assert.Equal(t, 0, result.SkippedRows)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := ledger.Parse(strings.NewReader(""))
	require.Error(t, err)
}

func TestParse_NoDataRows(t *testing.T) {
	result, err := ledger.Parse(strings.NewReader(header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, result.Sessions)
}

func TestParse_ExtraColumnsIgnored(t *testing.T) {
	csv := header + ",table_id\n" +
		"alice,1,a,b,100,150,150,50,9\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "alice", result.Sessions[0].PlayerNickname)
}

func TestParse_RowAccounting(t *testing.T) {
	// sessions + skipped always equals the number of data lines
	csv := header + "\n" +
		"alice,1,a,b,100,150,150,50\n" +
		"bob,2,a,b,bad,150,150,50\n" +
		"carol,3,a,b,100,150,150,50\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, len(result.Sessions)+result.SkippedRows)
}

func TestParse_FractionalCentsRounded(t *testing.T) {
	csv := header + "\n" +
		"alice,1,a,b,100.4,150.6,150,49.5\n"

	result, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, int64(100), result.Sessions[0].BuyInCents)
	assert.Equal(t, int64(151), result.Sessions[0].BuyOutCents)
	assert.Equal(t, int64(50), result.Sessions[0].NetCents)
}
