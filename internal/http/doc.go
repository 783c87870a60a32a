// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: logs in. Body: {"email","password","role"}. Response:
//     {"token","expires_at","user":{...}} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /signup: same as login with {"name","email","password","confirm_password","role"}.
//   - DELETE /sessions/current: revokes the current token and clears the signed-in user.
//   - GET /me, GET /home: the authenticated principal and its landing view.
//   - GET /professionals?q=, GET /professionals/{id}, GET /professionals/{id}/availability,
//     POST /professionals/{id}/bookings, GET /dashboard: role `user`.
//   - GET /professional/dashboard: role `professional`.
//   - GET /admin/dashboard, PUT /admin/professionals/{id}/active,
//     POST /admin/professionals/{id}/toggle, GET /admin/appointments.csv,
//     GET /admin/reconciliation: role `admin`.
//   - GET /healthz and GET /metrics are public.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
