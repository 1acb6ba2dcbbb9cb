// Package sender provides the channel adapters invoked by the orchestrator:
// in-app (a write into the notification store), email (Postmark), and
// Func-wrapped external collaborators for SMS and push.
//
// Adapters are thin. They deliver rendered content and return a success or
// failure signal; retry classification happens upstream by inspecting the
// error message, so adapters phrase failures accordingly (a missing
// recipient address reads as invalid, a gateway problem as unavailable).
package sender
