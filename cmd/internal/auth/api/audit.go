package authapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"
)

func (h *Handler) auditLoginSuccess(ctx context.Context, ip net.IP, ua, subject string) {
	h.insertAudit(ctx, "auth.login.success", ip, ua, map[string]any{"subject": subject})
}

func (h *Handler) auditLoginFailed(ctx context.Context, ip net.IP, ua, reason string) {
	h.insertAudit(ctx, "auth.login.failed", ip, ua, map[string]any{"reason": reason})
}

func (h *Handler) auditLogout(ctx context.Context, ip net.IP, ua string, partial bool) {
	h.insertAudit(ctx, "auth.logout", ip, ua, map[string]any{"partial": partial})
}

func (h *Handler) auditValidateInvalid(ctx context.Context, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.validate.invalid", ip, ua, nil)
}

func (h *Handler) auditRateLimited(ctx context.Context, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.rate_limited", ip, ua, nil)
}

func (h *Handler) auditLinkConsumed(ctx context.Context, ip net.IP, ua, class string, success bool) {
	h.insertAudit(ctx, "auth.link.consumed", ip, ua, map[string]any{
		"class":   class,
		"success": success,
	})
}

func (h *Handler) insertAudit(ctx context.Context, action string, ip net.IP, ua string, meta map[string]any) {
	if h == nil || h.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var ipVal any
	if ip != nil {
		ipVal = ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := h.pool.Exec(ctx, `
		INSERT INTO authgate.audit_log (
			action, created_at, ip, user_agent, meta
		) VALUES ($1, now(), $2, $3, $4::jsonb)
	`, action, ipVal, trimOrNil(ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
