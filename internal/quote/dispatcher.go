package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	commonaws "blower-selector/internal/common/aws"
	"blower-selector/internal/common/errors"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/common/metrics"
	"blower-selector/internal/refdata"
)

// Dispatcher emails assembled quotes to the requester via SES.
type Dispatcher struct {
	ses     commonaws.SESAPI
	from    string
	replyTo string
	logger  logger.Logger
}

// NewDispatcher creates a quote email dispatcher.
func NewDispatcher(client commonaws.SESAPI, from, replyTo string, log logger.Logger) *Dispatcher {
	return &Dispatcher{ses: client, from: from, replyTo: replyTo, logger: log}
}

// Dispatch sends the quote to the email collected during the conversation.
func (d *Dispatcher) Dispatch(ctx context.Context, q *Quote) error {
	if q.Answers.Email == nil {
		return errors.NewDomainError(errors.ErrCodeQuoteDispatchFailed,
			fmt.Sprintf("quote %s has no recipient email", q.ID), "")
	}
	to := *q.Answers.Email

	input := &ses.SendEmailInput{
		Source: aws.String(d.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("Your blower selection quote %s", q.ID)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(renderText(q)),
				},
			},
		},
	}
	if d.replyTo != "" {
		input.ReplyToAddresses = []string{d.replyTo}
	}

	if _, err := d.ses.SendEmail(ctx, input); err != nil {
		metrics.QuoteDispatchTotal.WithLabelValues("error").Inc()
		d.logger.WithError(err).Error("quote email failed", zap.String("quote_id", q.ID))
		return errors.NewDomainError(errors.ErrCodeQuoteDispatchFailed,
			fmt.Sprintf("could not send quote %s to %s", q.ID, to), err.Error())
	}

	metrics.QuoteDispatchTotal.WithLabelValues("success").Inc()
	d.logger.Info("quote email sent", zap.String("quote_id", q.ID), zap.String("to", to))
	return nil
}

// renderText produces the plain-text body of the quote email.
func renderText(q *Quote) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Quote %s\n", q.ID)
	fmt.Fprintf(&b, "Issued %s\n\n", q.Timestamp.Format("2006-01-02 15:04 MST"))

	req := q.Requirement
	fmt.Fprintf(&b, "Required airflow:  %.2f m3/min\n", req.AirflowM3Min)
	fmt.Fprintf(&b, "Required pressure: %.1f mbar\n", req.TotalPressureMbar)
	fmt.Fprintf(&b, "Estimated power:   %.2f kW\n\n", req.PowerKW)

	fmt.Fprintf(&b, "Pressure breakdown (mbar):\n")
	fmt.Fprintf(&b, "  static    %.1f\n", req.Breakdown.StaticMbar)
	fmt.Fprintf(&b, "  friction  %.1f\n", req.Breakdown.FrictionMbar)
	fmt.Fprintf(&b, "  fittings  %.1f\n", req.Breakdown.FittingMbar)
	fmt.Fprintf(&b, "  diffuser  %.1f\n", req.Breakdown.DiffuserMbar)

	if len(req.Warnings) > 0 {
		fmt.Fprintf(&b, "\nNotes:\n")
		for _, w := range req.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	if len(q.Matches) == 0 {
		fmt.Fprintf(&b, "\nNo catalog product covers this duty point. Our engineers will follow up with a custom proposal.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nRecommended blowers:\n")
	for i, m := range q.Matches {
		stock := "on request"
		switch m.Product.StockState {
		case refdata.StockInStock:
			stock = "in stock"
		case refdata.StockLowStock:
			stock = "low stock"
		}
		fmt.Fprintf(&b, "  %d. %s (%s, %s) - %.1f-%.1f m3/min, up to %.0f mbar, %.1f kW, R%.2f\n",
			i+1, m.Product.Model, m.Category, stock,
			m.Product.AirflowMin, m.Product.AirflowMax,
			m.Product.PressureMaxMbr, m.Product.PowerKW, m.Product.Price)
	}

	return b.String()
}
