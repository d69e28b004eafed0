package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"post-approval-verification/activities"
	"post-approval-verification/clients"
	"post-approval-verification/config"
	"post-approval-verification/device"
	"post-approval-verification/esign"
	"post-approval-verification/session"
	"post-approval-verification/shared"
)

// buildActivities wires real collaborators from config. Services with no
// configured base URL still get an HTTP client; their calls fail and the
// flows surface that the same way as any other outage.
func buildActivities(cfg *config.Config) *activities.Activities {
	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(
			redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
			cfg.RedisNamespace,
		)
	} else {
		sessions = session.NewMemoryStore()
	}

	var signer esign.Signer
	if cfg.DigioBaseURL != "" {
		signer = esign.NewDigioSigner(cfg.DigioBaseURL, esign.Options{
			Environment: cfg.DigioEnvironment,
			LogoURL:     cfg.DigioLogoURL,
			Theme:       cfg.DigioTheme,
			RedirectURL: cfg.DigioRedirectURL,
		})
	} else {
		signer = &esign.NoopSigner{}
	}

	return &activities.Activities{
		Identity:  clients.NewHTTPIdentityService(cfg.IdentityBaseURL),
		Face:      clients.NewHTTPFaceService(cfg.FaceBaseURL),
		Mandate:   clients.NewHTTPMandateService(cfg.MandateBaseURL),
		Agreement: clients.NewHTTPAgreementService(cfg.AgreementBaseURL),
		Status:    clients.NewHTTPStatusService(cfg.StatusBaseURL),
		Chat:      clients.NewHTTPChatService(cfg.ChatBaseURL),
		IFSC:      clients.NewHTTPIFSCService(cfg.IFSCBaseURL),

		Camera:  device.NewBridgeCamera(cfg.DeviceBridgeURL),
		Locator: device.NewBridgeLocator(cfg.DeviceBridgeURL),
		Signer:  signer,

		Sessions: sessions,
	}
}

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

	// MaxConcurrentActivityExecutionSize caps parallel activities on this
	// worker; the verification services are rate-limited, so keep it modest.
	w := worker.New(c, shared.ActivityTaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: 50,
	})

	w.RegisterActivity(buildActivities(cfg))

	log.Println("Starting activity worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Unable to start worker: %v", err)
	}
}
