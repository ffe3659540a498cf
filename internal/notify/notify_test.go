package notify

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(v int) *int { return &v }

func TestNotifier_LogRecorded(t *testing.T) {
	sender := &RecordingSender{}
	m := metrics.NewTestManager()
	n := NewNotifier(sender, m)

	l := domain.ExerciseLog{
		WeightKg:      82.5,
		RepsCompleted: 8,
		RIRActual:     intPtr(2),
		Status:        domain.LogHalf,
		Notes:         "left knee ok",
		CompletedAt:   time.Date(2024, 3, 7, 18, 30, 0, 0, time.UTC),
	}
	require.NoError(t, n.LogRecorded(context.Background(), "coach@example.com", "jdoe", "Back Squat", l))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, []string{"coach@example.com"}, msg.To)
	assert.Equal(t, "Training report from jdoe", msg.Subject)
	assert.Contains(t, msg.Body, "jdoe has logged the exercise Back Squat.")
	assert.Contains(t, msg.Body, "- Weight: 82.5 kg")
	assert.Contains(t, msg.Body, "- Reps: 8")
	assert.Contains(t, msg.Body, "- RIR: 2")
	assert.Contains(t, msg.Body, "- RPE: -")
	assert.Contains(t, msg.Body, "- Status: Half done")
	assert.Contains(t, msg.Body, "- Notes: left knee ok")
	assert.Contains(t, msg.Body, "Date: 07/03/2024")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterEmails.WithLabelValues(kindLogRecorded, "ok")))
}

func TestNotifier_WeeklyReport(t *testing.T) {
	sender := &RecordingSender{}
	n := NewNotifier(sender, nil)

	r := WeeklyReport{
		TrainerEmail:   "coach@example.com",
		PlanName:       "Hypertrophy",
		ClientUsername: "jdoe",
		Start:          time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 5, 12, 23, 59, 59, 0, time.UTC),
		Consistency:    66.666,
		Workbook:       []byte("xlsx"),
	}
	require.NoError(t, n.WeeklyReport(context.Background(), r))

	msg := sender.Sent()[0]
	assert.Equal(t, "Weekly report: Hypertrophy for jdoe", msg.Subject)
	assert.Contains(t, msg.Body, "Consistency: 66.67%")
	assert.Contains(t, msg.Body, "06/05/2024 to 12/05/2024")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "weekly_report_2024-05-06.xlsx", msg.Attachments[0].Name)
	assert.Equal(t, ContentTypeXLSX, msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("xlsx"), msg.Attachments[0].Data)
}

func TestNotifier_CountsFailures(t *testing.T) {
	sender := &RecordingSender{Err: errors.New("smtp down")}
	m := metrics.NewTestManager()
	n := NewNotifier(sender, m)

	err := n.LogRecorded(context.Background(), "coach@example.com", "jdoe", "Row", domain.ExerciseLog{})
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterEmails.WithLabelValues(kindLogRecorded, "failed")))
}

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg("noreply@fitcoach.local", Message{
		To:      []string{"coach@example.com"},
		Subject: "Weekly report",
		Body:    "see attachment",
		Attachments: []Attachment{{
			Name:        "weekly_report_2024-05-06.xlsx",
			ContentType: ContentTypeXLSX,
			Data:        []byte("PK"),
		}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Subject: Weekly report")
	assert.Contains(t, out, "weekly_report_2024-05-06.xlsx")
	assert.Contains(t, out, ContentTypeXLSX)

	_, err = buildMsg("noreply@fitcoach.local", Message{To: []string{"not an address"}})
	assert.Error(t, err)
}

func TestNewSender_DisabledWithoutHost(t *testing.T) {
	s, err := NewSender(config.MailConfig{})
	require.NoError(t, err)
	assert.IsType(t, DisabledSender{}, s)
	assert.NoError(t, s.Send(context.Background(), Message{Subject: "dropped"}))

	s, err = NewSender(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "a@b.c", TLS: true, Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
}
