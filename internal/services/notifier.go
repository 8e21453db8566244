package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// OrderNotifier receives best-effort notifications about placed orders. A
// failing notifier never fails a checkout.
type OrderNotifier interface {
	NotifyOrderPlaced(order OrderNotification) error
}

// OrderNotification carries the order data sent to the admin channel.
type OrderNotification struct {
	OrderID       string
	OrderNumber   string
	Items         []OrderItemNotification
	TotalAmount   float64
	PaymentMethod string
	PaymentStatus string
}

// OrderItemNotification is one line of an order notification.
type OrderItemNotification struct {
	Name     string
	Quantity int
	Price    float64
}

// TelegramNotifier pushes order notifications to an admin Telegram chat.
type TelegramNotifier struct {
	botToken    string
	adminChatID string
}

// NewTelegramNotifier creates a TelegramNotifier. With an empty token or
// chat ID every send is a silent no-op, so local setups need no bot.
func NewTelegramNotifier(botToken, adminChatID string) *TelegramNotifier {
	return &TelegramNotifier{botToken: botToken, adminChatID: adminChatID}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NotifyOrderPlaced implements OrderNotifier.
func (n *TelegramNotifier) NotifyOrderPlaced(order OrderNotification) error {
	if n.botToken == "" || n.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %.2f = %.2f\n",
			i+1, item.Name, item.Quantity, item.Price,
			item.Price*float64(item.Quantity)))
	}

	paymentText := "Cash on delivery"
	if order.PaymentMethod == "card" {
		paymentText = "Card"
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %.2f
<b>💳 Payment:</b> %s (%s)`,
		order.OrderNumber,
		itemsList.String(),
		order.TotalAmount,
		paymentText,
		order.PaymentStatus,
	)

	return n.send(strings.TrimSpace(message))
}

func (n *TelegramNotifier) send(text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    n.adminChatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}
