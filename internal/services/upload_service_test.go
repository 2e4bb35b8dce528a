package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/services"
	"github.com/samfeldman824/putr/internal/stats"
	"github.com/samfeldman824/putr/internal/testutil"
)

const ledgerHeader = "player_nickname,player_id,session_start_at,session_end_at,buy_in,buy_out,stack,net\n"

type row struct {
	nickname string
	netCents int64
}

func ledgerCSV(rows ...row) string {
	var b strings.Builder
	b.WriteString(ledgerHeader)
	for i, r := range rows {
		b.WriteString(fmt.Sprintf("%s,p%d,2024-01-01T00:00,2024-01-01T04:00,10000,%d,%d,%d\n",
			r.nickname, i, 10000+r.netCents, 10000+r.netCents, r.netCents))
	}
	return b.String()
}

func TestProcessLedger_CreatesUnknownPlayers(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	svc := services.NewUploadService(repo)

	report, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 5000}, row{"bob", -5000})),
		services.UploadOptions{Date: "24_01_01", Location: "garage"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alice", "bob"}, report.Created)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 0, report.FailureCount)
	assert.Equal(t, 2, repo.Len())

	alice, err := repo.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.InDelta(t, 50.0, alice.Net, 1e-9)
	assert.Equal(t, []string{"alice"}, alice.PlayerNicknames)
}

func TestProcessLedger_ResolvesNicknameToCanonicalRecord(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	existing := stats.NewPlayerStats("Alice Smith", []string{"Alice Smith", "alice"})
	existing.Net = 20
	repo.Seed(existing)
	svc := services.NewUploadService(repo)

	report, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 5000})),
		services.UploadOptions{Date: "24_02_01"})
	require.NoError(t, err)

	assert.Empty(t, report.Created, "a matched nickname must not create a new record")
	assert.Equal(t, []string{"Alice Smith"}, report.Players)
	assert.Equal(t, 1, repo.Len())

	updated, err := repo.Get(context.Background(), "Alice Smith")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.InDelta(t, 70.0, updated.Net, 1e-9)
}

func TestProcessLedger_UpMostDownMostFlags(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	svc := services.NewUploadService(repo)

	_, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 9000}, row{"bob", -4000}, row{"carol", -5000})),
		services.UploadOptions{Date: "24_01_01"})
	require.NoError(t, err)

	alice, _ := repo.Get(context.Background(), "alice")
	bob, _ := repo.Get(context.Background(), "bob")
	carol, _ := repo.Get(context.Background(), "carol")
	assert.Equal(t, 1, alice.GamesUpMost)
	assert.Equal(t, 0, bob.GamesUpMost)
	assert.Equal(t, 0, bob.GamesDownMost)
	assert.Equal(t, 1, carol.GamesDownMost)
}

func TestProcessLedger_DryRun(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	svc := services.NewUploadService(repo)

	report, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 5000})),
		services.UploadOptions{Date: "24_01_01", DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Sessions)
	assert.Equal(t, []string{"alice"}, report.Players)
	assert.Equal(t, 0, repo.Len(), "dry run must not write")
}

func TestProcessLedger_AtomicRestoresOnPartialFailure(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	existing := stats.NewPlayerStats("alice", []string{"alice"})
	existing.Net = 20
	repo.Seed(existing)
	repo.FailKeys["bob"] = fmt.Errorf("write timeout")
	svc := services.NewUploadService(repo)

	report, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 5000}, row{"bob", -5000})),
		services.UploadOptions{Date: "24_01_01", Atomic: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.True(t, report.Restored)

	// alice was written and then rolled back to her pre-upload record.
	alice, err := repo.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.InDelta(t, 20.0, alice.Net, 1e-9)
	assert.Empty(t, alice.GamesPlayed)
}

func TestProcessLedger_BestEffortKeepsPartialWrites(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	repo.FailKeys["bob"] = fmt.Errorf("write timeout")
	svc := services.NewUploadService(repo)

	report, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 5000}, row{"bob", -5000})),
		services.UploadOptions{Date: "24_01_01"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.False(t, report.Restored)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "bob")

	alice, _ := repo.Get(context.Background(), "alice")
	require.NotNil(t, alice)
	assert.InDelta(t, 50.0, alice.Net, 1e-9)
}

func TestProcessLedger_EmptyDateRejected(t *testing.T) {
	svc := services.NewUploadService(testutil.NewMemoryPlayerRepository())

	_, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerCSV(row{"alice", 5000})),
		services.UploadOptions{})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestProcessLedger_NoUsableRowsRejected(t *testing.T) {
	svc := services.NewUploadService(testutil.NewMemoryPlayerRepository())

	_, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(ledgerHeader),
		services.UploadOptions{Date: "24_01_01"})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestProcessLedger_SkippedRowsReported(t *testing.T) {
	csv := ledgerHeader +
		"alice,p0,2024-01-01T00:00,2024-01-01T04:00,10000,15000,15000,5000\n" +
		",p1,2024-01-01T00:00,2024-01-01T04:00,10000,15000,15000,5000\n"
	svc := services.NewUploadService(testutil.NewMemoryPlayerRepository())

	report, err := svc.ProcessLedger(context.Background(),
		strings.NewReader(csv),
		services.UploadOptions{Date: "24_01_01"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sessions)
	assert.Equal(t, 1, report.SkippedRows)
}
