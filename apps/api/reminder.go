package main

import (
	"fmt"
	"net/mail"

	"github.com/robfig/cron/v3"

	"github.com/HillyAttic/opsboard/core"
	"github.com/HillyAttic/opsboard/core/report"
	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/user"
)

// startReminderDigest schedules the overdue digest job. Managers get an email
// with the pending occurrences and a CSV attachment whenever the summary is
// non-empty.
func startReminderDigest(
	conf *core.Config,
	logger core.Logger,
	mailSvc core.EmailService,
	usrSvc *user.Service,
	reportSvc *report.Service,
) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(conf.Reminder.Cron, func() {
		if err := sendReminderDigest(logger, mailSvc, usrSvc, reportSvc); err != nil {
			logger.Error(fmt.Sprintf("reminder digest: %v", err), err)
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	logger.Info(fmt.Sprintf("reminder digest scheduled: %q", conf.Reminder.Cron))
	return scheduler, nil
}

func sendReminderDigest(
	logger core.Logger,
	mailSvc core.EmailService,
	usrSvc *user.Service,
	reportSvc *report.Service,
) error {
	items, err := reportSvc.OverdueSummary(schedule.Today())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		logger.Debug("reminder digest: nothing overdue")
		return nil
	}

	isActive := true
	managers, err := usrSvc.Filter(user.QueryFilter{Roles: user.ManagerRoles, IsActive: &isActive})
	if err != nil {
		return err
	}
	admins, err := usrSvc.Filter(user.QueryFilter{Roles: user.AdminRoles, IsActive: &isActive})
	if err != nil {
		return err
	}
	recipients := make([]mail.Address, 0, len(managers)+len(admins))
	seen := make(map[string]bool, len(managers)+len(admins))
	for _, usr := range append(managers, admins...) {
		if usr.Email == "" || seen[usr.Email] {
			continue
		}
		seen[usr.Email] = true
		recipients = append(recipients, mail.Address{Name: usr.Name, Address: usr.Email})
	}
	if len(recipients) == 0 {
		logger.Warn("reminder digest: no recipients")
		return nil
	}

	csv, err := report.OverdueCSV(items)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		Bcc:     recipients,
		Subject: fmt.Sprintf("Overdue tasks: %d pending", len(items)),
		BodyStr: fmt.Sprintf(
			"There are %d overdue task occurrences across %d clients.\n"+
				"See the attached CSV for the full list.",
			len(items), countClients(items),
		),
		Attachments: []core.Attachment{
			{Content: csv, ContentType: "text/csv", Filename: "overdue.csv"},
		},
	}
	mailSvc.SendMessages(msg)
	logger.Info(fmt.Sprintf("reminder digest: emailed %d recipients about %d items", len(recipients), len(items)))
	return nil
}

func countClients(items []report.OverdueItem) int {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.ClientID] = true
	}
	return len(seen)
}
