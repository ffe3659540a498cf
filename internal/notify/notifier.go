package notify

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"
)

const (
	kindLogRecorded  = "log_recorded"
	kindWeeklyReport = "weekly_report"
)

var logRecordedTmpl = template.Must(template.New("log").Funcs(template.FuncMap{
	"opt": optInt,
}).Parse(`{{.Client}} has logged the exercise {{.Exercise}}.

Details:
- Weight: {{printf "%g" .Log.WeightKg}} kg
- Reps: {{.Log.RepsCompleted}}
- RIR: {{opt .Log.RIRActual}}
- RPE: {{opt .Log.RPEActual}}
- Status: {{.Log.Status.Label}}
- Notes: {{.Log.Notes}}

Date: {{.Log.CompletedAt.Format "02/01/2006"}}
`))

var weeklyReportTmpl = template.Must(template.New("weekly").Parse(
	`Attached is the weekly report for {{.Plan}} ({{.Client}}), week of {{.Start.Format "02/01/2006"}} to {{.End.Format "02/01/2006"}}.
Consistency: {{printf "%.2f" .Consistency}}%
`))

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

// Notifier composes and sends the application's emails.
type Notifier struct {
	sender  Sender
	metrics *metrics.Manager
}

func NewNotifier(sender Sender, metricsManager *metrics.Manager) *Notifier {
	return &Notifier{sender: sender, metrics: metricsManager}
}

// LogRecorded tells the trainer that a client logged an exercise.
func (n *Notifier) LogRecorded(ctx context.Context, trainerEmail, clientUsername, exerciseName string, l domain.ExerciseLog) error {
	var body bytes.Buffer
	err := logRecordedTmpl.Execute(&body, struct {
		Client   string
		Exercise string
		Log      domain.ExerciseLog
	}{clientUsername, exerciseName, l})
	if err != nil {
		return err
	}

	return n.send(ctx, kindLogRecorded, Message{
		To:      []string{trainerEmail},
		Subject: fmt.Sprintf("Training report from %s", clientUsername),
		Body:    body.String(),
	})
}

// WeeklyReport is the content of one plan's weekly report email.
type WeeklyReport struct {
	TrainerEmail   string
	PlanName       string
	ClientUsername string
	Start, End     time.Time
	Consistency    float64
	Workbook       []byte
}

// AttachmentName is the file name of the report workbook.
func (r WeeklyReport) AttachmentName() string {
	return fmt.Sprintf("weekly_report_%s.xlsx", r.Start.Format(time.DateOnly))
}

func (n *Notifier) WeeklyReport(ctx context.Context, r WeeklyReport) error {
	var body bytes.Buffer
	err := weeklyReportTmpl.Execute(&body, struct {
		Plan, Client string
		Start, End   time.Time
		Consistency  float64
	}{r.PlanName, r.ClientUsername, r.Start, r.End, r.Consistency})
	if err != nil {
		return err
	}

	return n.send(ctx, kindWeeklyReport, Message{
		To:      []string{r.TrainerEmail},
		Subject: fmt.Sprintf("Weekly report: %s for %s", r.PlanName, r.ClientUsername),
		Body:    body.String(),
		Attachments: []Attachment{{
			Name:        r.AttachmentName(),
			ContentType: ContentTypeXLSX,
			Data:        r.Workbook,
		}},
	})
}

func (n *Notifier) send(ctx context.Context, kind string, msg Message) error {
	err := n.sender.Send(ctx, msg)
	result := "ok"
	if err != nil {
		result = "failed"
	}
	if n.metrics != nil {
		n.metrics.CounterEmails.WithLabelValues(kind, result).Inc()
	}
	return err
}
