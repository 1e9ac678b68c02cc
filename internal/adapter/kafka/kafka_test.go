package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/config"
	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	fetched := time.Date(2021, 1, 2, 9, 30, 0, 0, time.UTC)
	rec := domain.StateRecord{
		UF:               "SP",
		Confirmed:        1000,
		Deaths:           50,
		DeathRate:        5,
		ConfirmedPer100k: 50,
		Population:       2000000,
		ReportDate:       time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Annotation:       "<b>SP</b>",
	}

	msg, err := serializeToMessage(rec, fetched)
	require.NoError(t, err)

	assert.Equal(t, []byte("SP"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "report_date", msg.Headers[0].Key)
	assert.Equal(t, []byte("2021-01-01"), msg.Headers[0].Value)
	assert.Equal(t, "fetched_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(fetched.Format(time.RFC3339)), msg.Headers[1].Value)

	var roundtrip domain.StateRecord
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, rec, roundtrip)
}

func TestWriter_PublishEmptyReportIsNoop(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "unused"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Publish(context.Background(), domain.Report{}))
}
