package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pharmatch/internal/adapters/persistence/models"
)

// NotificationService posts lifecycle events to an operations webhook.
// Notifications are fire-and-forget: failures are logged, never returned.
type NotificationService struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	url := os.Getenv("NOTIFY_WEBHOOK_URL")
	return &NotificationService{
		webhookURL: url,
		enabled:    url != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

func (s *NotificationService) send(event, message string) {
	if !s.enabled {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"event":   event,
		"message": message,
	})
	if err != nil {
		log.Printf("❌ Notify marshal error: %v", err)
		return
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("❌ Notify %s error: %v", event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("❌ Notify %s: webhook returned %d", event, resp.StatusCode)
	}
}

// NotifyContractCreated announces a freshly accepted engagement
func (s *NotificationService) NotifyContractCreated(contract *models.Contract) {
	s.send("contract.created", fmt.Sprintf(
		"🆕 Contract #%d created: ¥%d total (fee ¥%d), payment due %s",
		contract.ID, contract.TotalCompensation, contract.PlatformFee,
		contract.PaymentDeadline.Format("2006-01-02 15:04"),
	))
}

// NotifyOfferApproved announces pharmacist approval of the offer
func (s *NotificationService) NotifyOfferApproved(contract *models.Contract) {
	s.send("contract.approved", fmt.Sprintf(
		"👍 Contract #%d approved by pharmacist, awaiting payment", contract.ID,
	))
}

// NotifyOfferRejected announces pharmacist rejection of the offer
func (s *NotificationService) NotifyOfferRejected(contract *models.Contract) {
	s.send("contract.rejected", fmt.Sprintf(
		"👎 Contract #%d rejected by pharmacist", contract.ID,
	))
}

// NotifyContractActivated announces contract activation
func (s *NotificationService) NotifyContractActivated(contract *models.Contract) {
	s.send("contract.activated", fmt.Sprintf(
		"✅ Contract #%d activated, contact details disclosed", contract.ID,
	))
}

// NotifyContractExpired announces contract cancellation for non-payment
func (s *NotificationService) NotifyContractExpired(contract *models.Contract) {
	s.send("contract.expired", fmt.Sprintf(
		"⛔ Contract #%d cancelled: payment deadline passed", contract.ID,
	))
}

// NotifyContractCompleted announces normal completion
func (s *NotificationService) NotifyContractCompleted(contract *models.Contract) {
	s.send("contract.completed", fmt.Sprintf(
		"🏁 Contract #%d completed", contract.ID,
	))
}

// NotifyPaymentReported announces a pharmacy's transfer report
func (s *NotificationService) NotifyPaymentReported(payment *models.Payment) {
	s.send("payment.reported", fmt.Sprintf(
		"💴 Payment %s reported for contract #%d: ¥%d, awaiting confirmation",
		payment.ReferenceNo, payment.ContractID, payment.Amount,
	))
}

// NotifyPaymentConfirmed announces admin confirmation of a transfer
func (s *NotificationService) NotifyPaymentConfirmed(payment *models.Payment) {
	s.send("payment.confirmed", fmt.Sprintf(
		"✅ Payment %s confirmed for contract #%d",
		payment.ReferenceNo, payment.ContractID,
	))
}

// NotifyPaymentOverdue announces a missed payment deadline
func (s *NotificationService) NotifyPaymentOverdue(payment *models.Payment) {
	s.send("payment.overdue", fmt.Sprintf(
		"⚠️ Payment %s for contract #%d is overdue",
		payment.ReferenceNo, payment.ContractID,
	))
}

// NotifyPenaltyImposed announces a penalty against a pharmacy
func (s *NotificationService) NotifyPenaltyImposed(penalty *models.Penalty) {
	s.send("penalty.imposed", fmt.Sprintf(
		"🚨 Penalty #%d (%s) imposed on pharmacy #%d",
		penalty.ID, penalty.PenaltyType, penalty.PharmacyID,
	))
}

// NotifyPenaltyResolved announces resolution of a penalty
func (s *NotificationService) NotifyPenaltyResolved(penalty *models.Penalty) {
	s.send("penalty.resolved", fmt.Sprintf(
		"🤝 Penalty #%d resolved for pharmacy #%d",
		penalty.ID, penalty.PharmacyID,
	))
}
