package console

import (
	"fmt"
	"io"

	"class_openings_notifier/internal/app"
	"class_openings_notifier/internal/domain/recipient"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderRun prints the openings found by a cycle followed by the per-recipient outcome.
func RenderRun(w io.Writer, report *app.RunReport) {
	if report.WalkErr != nil {
		fmt.Fprintf(w, "Schedule check failed: %v\n", report.WalkErr)
	}

	if len(report.Openings) == 0 {
		fmt.Fprintln(w, app.NoOpeningsMessage)
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Class openings")
		t.AppendHeader(table.Row{"Open spots", "Level", "Date", "Time"})
		for _, s := range report.Openings {
			t.AppendRow(table.Row{s.OpenSpots, s.Level, s.Date, s.Time12h()})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if report.DispatchErr != nil {
		fmt.Fprintf(w, "Dispatch failed: %v\n", report.DispatchErr)
	}
	if len(report.Deliveries) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Recipient", "Status", "Detail"})
		for _, d := range report.Deliveries {
			t.AppendRow(table.Row{d.Recipient, string(d.Status), deliveryDetail(d)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if report.EvictErr != nil {
		fmt.Fprintf(w, "Eviction failed: %v\n", report.EvictErr)
	}
}

func deliveryDetail(d app.Delivery) string {
	switch d.Status {
	case app.DeliverySent:
		return fmt.Sprintf("%d slot(s), message %s", d.Slots, d.MessageID)
	case app.DeliveryAlreadyNotified:
		return app.AlreadyNotifiedMessage
	default:
		if d.Err != nil {
			return d.Err.Error()
		}
		return ""
	}
}

// RenderRecipients prints the roster.
func RenderRecipients(w io.Writer, recipients []*recipient.Recipient) {
	if len(recipients) == 0 {
		fmt.Fprintln(w, "No recipients on the roster")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Email"})
	for _, r := range recipients {
		t.AppendRow(table.Row{r.ID, r.Email})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
