package ledger

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
)

// RequiredColumns are the header columns every ledger CSV must carry.
// Order-independent; extra columns are ignored.
var RequiredColumns = []string{
	"player_nickname",
	"player_id",
	"session_start_at",
	"session_end_at",
	"buy_in",
	"buy_out",
	"stack",
	"net",
}

// ParseResult holds the parsed sessions plus row-level accounting for the
// upload preview.
type ParseResult struct {
	Sessions    []models.Session
	SkippedRows int
}

// Parse reads a ledger CSV and produces the ordered session rows.
//
// The header must contain every required column or parsing fails with a
// MALFORMED_INPUT error naming the first missing one. Defective data rows
// (field-count mismatch, empty nickname, unparseable buy_in) are logged and
// dropped without failing the upload. Other numeric fields that fail to parse
// are coerced to 0; the ledger exports have occasionally contained junk in
// the stack column and rejecting the whole file for it lost real games.
func Parse(r io.Reader) (*ParseResult, error) {
	log := logger.Default().WithPrefix("ledger")

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewMalformedInputError("unable to read CSV input")
	}

	lines := splitLines(string(raw))
	if len(lines) == 0 {
		return nil, errors.NewMalformedInputError("CSV is empty")
	}

	header := splitFields(lines[0])
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.NewMalformedInputError("missing required column: " + col)
		}
	}

	result := &ParseResult{}
	for lineNo, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) != len(header) {
			log.Warn("skipping row %d: expected %d fields, got %d", lineNo+2, len(header), len(fields))
			result.SkippedRows++
			continue
		}

		nickname := fields[index["player_nickname"]]
		if nickname == "" {
			log.Warn("skipping row %d: empty player nickname", lineNo+2)
			result.SkippedRows++
			continue
		}

		buyIn, ok := parseCents(fields[index["buy_in"]])
		if !ok {
			log.Warn("skipping row %d: buy_in %q is not a number", lineNo+2, fields[index["buy_in"]])
			result.SkippedRows++
			continue
		}

		result.Sessions = append(result.Sessions, models.Session{
			PlayerNickname: nickname,
			PlayerID:       fields[index["player_id"]],
			StartAt:        fields[index["session_start_at"]],
			EndAt:          fields[index["session_end_at"]],
			BuyInCents:     buyIn,
			BuyOutCents:    centsOrZero(fields[index["buy_out"]]),
			StackCents:     centsOrZero(fields[index["stack"]]),
			NetCents:       centsOrZero(fields[index["net"]]),
		})
	}

	log.Debug("parsed %d sessions, skipped %d rows", len(result.Sessions), result.SkippedRows)
	return result, nil
}

// splitLines splits CSV text into non-empty lines, tolerating CRLF endings.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitFields splits one CSV line on commas, honoring double-quoted fields.
// A quote character toggles quoted state; commas inside quotes are literal.
// Each field is returned with surrounding whitespace and quotes stripped.
func splitFields(line string) []string {
	var fields []string
	var sb strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(sb.String()))
	return fields
}

// parseCents parses a numeric ledger amount in cents. Fractional values are
// rounded to the nearest cent.
func parseCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func centsOrZero(s string) int64 {
	v, ok := parseCents(s)
	if !ok {
		return 0
	}
	return v
}
