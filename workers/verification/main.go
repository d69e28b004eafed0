package main

import (
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"post-approval-verification/config"
	"post-approval-verification/shared"
	"post-approval-verification/workflows"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	// Connect to the Temporal server via gRPC. For Temporal Cloud or a secure
	// self-hosted cluster, add ConnectionOptions.TLS here.
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	// Workflow tasks are lightweight (no I/O), so default worker.Options are
	// fine; activity throughput is tuned on the activity worker instead.
	w := worker.New(c, shared.VerificationWorkflowTaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.PostApprovalWorkflow)
	w.RegisterWorkflow(workflows.AadhaarVerificationWorkflow)
	w.RegisterWorkflow(workflows.FaceVerificationWorkflow)
	w.RegisterWorkflow(workflows.EmiAutoPayWorkflow)
	w.RegisterWorkflow(workflows.AgreementSigningWorkflow)
	w.RegisterWorkflow(workflows.PlanSelectionPollerWorkflow)

	log.Println("Starting verification workflow worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Unable to start worker: %v", err)
	}
}
