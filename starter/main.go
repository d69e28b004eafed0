package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"go.temporal.io/sdk/client"

	"post-approval-verification/config"
	"post-approval-verification/shared"
	"post-approval-verification/workflows"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	loanID := "LOAN-001"
	if len(os.Args) > 1 {
		loanID = strings.TrimSpace(os.Args[1])
	}
	// Business-meaningful workflow ID acts as an idempotency key: one
	// post-approval run per loan at a time.
	workflowID := fmt.Sprintf("post-approval-%s", loanID)
	reader := bufio.NewReader(os.Stdin)

	req := shared.PostApprovalRequest{
		LoanID: loanID,
		UserID: "USER-001",
	}

	fmt.Println()
	fmt.Println("🚀 Starting post-approval verification for loan", loanID)

	we, err := c.ExecuteWorkflow(
		context.Background(),
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: shared.VerificationWorkflowTaskQueue,
		},
		workflows.PostApprovalWorkflow,
		req,
	)
	if err != nil {
		log.Fatalf("Unable to start workflow: %v", err)
	}
	fmt.Printf("   WorkflowID: %s\n", we.GetID())
	fmt.Printf("   RunID:      %s\n", we.GetRunID())

	for {
		fmt.Println()
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println("  Post-Approval Verification CLI")
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println()
		fmt.Println("  [1] Query verification progress")
		fmt.Println("  [2] Signal: plan-selection iframe opened")
		fmt.Println("  [3] Wait for the workflow result")
		fmt.Println("  [4] Exit (workflow continues running)")
		fmt.Println()
		fmt.Print("Choose: ")

		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		switch choice {
		case "1":
			handleQueryProgress(c, workflowID)

		case "2":
			err := c.SignalWorkflow(context.Background(), workflowID, "",
				shared.SignalPlanIframeOpened, shared.PlanIframeOpened{})
			if err != nil {
				fmt.Printf("❌ Signal failed: %v\n", err)
				continue
			}
			fmt.Println("✅ Signal sent.")

		case "3":
			fmt.Println("⏳ Waiting for workflow result...")
			var result string
			if err := we.Get(context.Background(), &result); err != nil {
				log.Fatalf("Workflow failed: %v", err)
			}
			fmt.Printf("🏁 Result: %s\n", result)
			return

		case "4":
			fmt.Println()
			fmt.Println("👋 Exiting CLI. The workflow continues running in Temporal.")
			fmt.Println("   Re-run this program to reconnect, or view at http://localhost:8233")
			return

		default:
			fmt.Println("❌ Invalid choice. Please enter 1-4.")
		}
	}
}

func handleQueryProgress(c client.Client, workflowID string) {
	resp, err := c.QueryWorkflow(context.Background(), workflowID, "", shared.QueryPostApprovalProgress)
	if err != nil {
		fmt.Printf("❌ Query failed: %v\n", err)
		return
	}

	var progress shared.PostApprovalProgress
	if err := resp.Get(&progress); err != nil {
		fmt.Printf("❌ Failed to decode progress: %v\n", err)
		return
	}

	fmt.Printf("\n📋 Current step: %s\n", progress.CurrentStep)
	fmt.Printf("   aadhaar=%t selfie=%t autopay=%t agreement=%t\n",
		progress.Status.AadhaarVerified, progress.Status.Selfie,
		progress.Status.AutoPay, progress.Status.AgreementSetup)
}
