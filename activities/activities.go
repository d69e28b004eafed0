package activities

import (
	"post-approval-verification/clients"
	"post-approval-verification/device"
	"post-approval-verification/esign"
	"post-approval-verification/session"
)

// Activities is the receiver for all activity methods. Using a struct allows
// Temporal to auto-discover and register all methods via RegisterActivity(a),
// and lets us inject the collaborator clients, the capture-bridge devices,
// the signing adapter and the session store that each activity method reaches
// through the receiver. In tests the fields hold stubs so no real service is
// touched.
type Activities struct {
	Identity  clients.IdentityService
	Face      clients.FaceService
	Mandate   clients.MandateService
	Agreement clients.AgreementService
	Status    clients.StatusService
	Chat      clients.ChatService
	IFSC      clients.IFSCService

	Camera  device.Camera
	Locator device.Locator
	Signer  esign.Signer

	Sessions session.Store
}
