// Command ledgerctl is a small operator CLI for the debt ledger API:
// list and create debts, settle them, send reminders, and check what the
// client can see of its own credentials and connectivity.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/client"
	"github.com/splitnest/debt-service/internal/models"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ledgerctl [-api URL] <command> [args]

Commands:
  owed-to-me                       list debts owed to you
  owed-by-me                       list debts you owe
  create <amount> <description>    create a debt (use -friend or -email)
  settle <id> [method]             mark a debt as paid
  delete <id>                      delete a debt
  remind <id> [message]            send a payment reminder
  overview                         show dashboard totals
  diag                             credential and connectivity diagnostics
`)
	os.Exit(2)
}

func main() {
	apiURL := flag.String("api", envOr("DEBT_SERVICE_API", "http://localhost:8080/api"), "API base URL")
	friendID := flag.Int64("friend", 0, "counterparty friend id (for create)")
	friendEmail := flag.String("email", "", "counterparty email (for create)")
	direction := flag.String("direction", models.DirectionOwedToMe, "debt direction (for create)")
	dueDate := flag.String("due", "", "due date YYYY-MM-DD (for create)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	tokenFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		tokenFile = filepath.Join(home, ".config", "debt-service", "token")
	}
	c := client.New(*apiURL, client.DefaultCredentialChain(tokenFile), log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	var err error
	switch args[0] {
	case "owed-to-me":
		err = printDebts(c.FetchDebtsOwedToMe(ctx))
	case "owed-by-me":
		err = printDebts(c.FetchDebtsOwedByMe(ctx))
	case "create":
		if len(args) < 3 {
			usage()
		}
		in := models.DebtInput{
			FriendEmail: *friendEmail,
			Amount:      args[1],
			Description: args[2],
			Direction:   *direction,
			DueDate:     *dueDate,
		}
		if *friendID != 0 {
			in.FriendID = friendID
		}
		var debt *models.Debt
		if debt, err = c.CreateManualDebt(ctx, in); err == nil {
			fmt.Printf("created debt %d: %.2f %q\n", debt.ID, debt.Amount, debt.Description)
		}
	case "settle":
		if len(args) < 2 {
			usage()
		}
		id := parseID(args[1])
		method := ""
		if len(args) > 2 {
			method = args[2]
		}
		var debt *models.Debt
		if debt, err = c.MarkDebtAsPaid(ctx, id, method); err == nil {
			fmt.Printf("debt %d is now %s\n", debt.ID, debt.Status)
		}
	case "delete":
		if len(args) < 2 {
			usage()
		}
		if err = c.DeleteDebt(ctx, parseID(args[1])); err == nil {
			fmt.Println("deleted")
		}
	case "remind":
		if len(args) < 2 {
			usage()
		}
		message := ""
		if len(args) > 2 {
			message = args[2]
		}
		// The reminder needs the debt's current status.
		debt := &models.Debt{ID: parseID(args[1]), Status: models.StatusOpen}
		if err = c.SendPaymentReminder(ctx, debt, message); err == nil {
			fmt.Println("reminder sent")
		}
	case "overview":
		var ov *models.DebtOverview
		if ov, err = c.GetDebtOverview(ctx); err == nil {
			fmt.Printf("owed to me: %.2f (%d open)\nI owe: %.2f (%d open)\nnet: %.2f\n",
				ov.TotalOwedToMe, ov.OpenOwedToMe, ov.TotalIOwe, ov.OpenIOwe, ov.NetBalance)
		}
	case "diag":
		fmt.Println(c.Diagnose(ctx).String())
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printDebts(list *client.DebtList, err error) error {
	if err != nil {
		return err
	}
	for _, d := range list.Debts {
		due := ""
		if d.DueDate != nil {
			due = " due " + d.DueDate.Format("2006-01-02")
		}
		fmt.Printf("%6d  %10.2f  [%s]%s  %s\n", d.ID, d.Amount, d.Status, due, d.Description)
	}
	fmt.Printf("%d debts, %.2f total\n", list.Count, list.TotalAmount)
	return nil
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid id %q\n", s)
		os.Exit(2)
	}
	return id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
