package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/invoice-extractor/internal/batch"
	"github.com/docuflow/invoice-extractor/internal/extract"
)

// stubTranscriber records what it was asked to transcribe
type stubTranscriber struct {
	seen   []string
	failOn string
}

func (s *stubTranscriber) Transcribe(_ context.Context, rec *extract.Record) (Outcome, error) {
	if rec.File == s.failOn {
		return Outcome{}, errors.New("target rejected the record")
	}
	s.seen = append(s.seen, rec.File)
	return Outcome{File: rec.File, OK: true}, nil
}

func (s *stubTranscriber) Close() error { return nil }

func testResult() *batch.Result {
	num := "INV-1"
	return &batch.Result{
		Documents: map[string]*extract.Record{
			"c.pdf": {File: "c.pdf", Status: extract.StatusComplete, InvoiceNumber: &num},
			"a.pdf": {File: "a.pdf", Status: extract.StatusPartial},
			"b.pdf": {File: "b.pdf", Status: extract.StatusFailed, Error: "no readable pages"},
		},
	}
}

func TestRun_SkipsFailedAndKeepsOrder(t *testing.T) {
	stub := &stubTranscriber{}

	outcomes, err := Run(context.Background(), stub, testResult(), nil)
	require.NoError(t, err)

	// Stable file-name order, failed document skipped but reported.
	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, stub.seen)

	assert.Equal(t, "a.pdf", outcomes[0].File)
	assert.True(t, outcomes[0].OK)
	assert.Equal(t, "b.pdf", outcomes[1].File)
	assert.False(t, outcomes[1].OK)
	assert.Contains(t, outcomes[1].Detail, "nothing to transcribe")
	assert.True(t, outcomes[2].OK)
}

func TestRun_ContainsPerRecordErrors(t *testing.T) {
	stub := &stubTranscriber{failOn: "a.pdf"}

	outcomes, err := Run(context.Background(), stub, testResult(), nil)
	require.NoError(t, err, "one rejected record must not stop the rest")

	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].OK)
	assert.Contains(t, outcomes[0].Detail, "rejected")
	assert.Equal(t, []string{"c.pdf"}, stub.seen)
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubTranscriber{}
	outcomes, err := Run(ctx, stub, testResult(), nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcomes)
	assert.Empty(t, stub.seen)
}

func TestFieldOrEmpty(t *testing.T) {
	assert.Equal(t, "", fieldOrEmpty(nil))
	s := "INV-9"
	assert.Equal(t, "INV-9", fieldOrEmpty(&s))
}

func TestAmountOrEmpty(t *testing.T) {
	assert.Equal(t, "", amountOrEmpty(nil))
	v := 1234.5
	assert.Equal(t, "1234.50", amountOrEmpty(&v))
}
