package order

import (
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/order"
)

// LogTokenNotifier writes approval-token notifications to the log
// instead of sending mail. Stands in until a real mail dispatcher is
// wired.
type LogTokenNotifier struct {
	logger *zap.Logger
}

// NewLogTokenNotifier creates a new LogTokenNotifier
func NewLogTokenNotifier(l *zap.Logger) *LogTokenNotifier {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogTokenNotifier{logger: l}
}

// NotifyApprovalRequested logs the token dispatch
func (n *LogTokenNotifier) NotifyApprovalRequested(token *order.ApprovalToken, o *order.SalesOrder) error {
	n.logger.Info("approval token issued",
		zap.String("sales_order_no", o.SalesOrderNo),
		zap.String("status", string(o.Status)),
		zap.String("partner_email", token.PartnerEmail),
	)
	return nil
}

// Ensure LogTokenNotifier implements order.TokenNotifier
var _ order.TokenNotifier = (*LogTokenNotifier)(nil)
