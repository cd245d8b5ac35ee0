package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/services"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// MessageSender delivers the bot's replies (Twilio in production)
type MessageSender interface {
	SendWhatsAppMessage(to, message string) error
}

// Notifier tells the dashboard the message log changed
type Notifier interface {
	NotifyNewMessage()
}

// WhatsAppHandler receives inbound messages, applies the allow-list
// gate and drives the menu state machine.
type WhatsAppHandler struct {
	store    storage.Store
	bot      *services.BotService
	sender   MessageSender
	notifier Notifier
}

// NewWhatsAppHandler creates a new WhatsApp webhook handler
func NewWhatsAppHandler(store storage.Store, bot *services.BotService, sender MessageSender, notifier Notifier) *WhatsAppHandler {
	return &WhatsAppHandler{
		store:    store,
		bot:      bot,
		sender:   sender,
		notifier: notifier,
	}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	From       string `form:"From"` // e.g. "whatsapp:+351912345678"
	To         string `form:"To"`
	Body       string `form:"Body"`
}

// HandleWebhook processes incoming WhatsApp messages from Twilio
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Status callbacks and media-only events carry no body
	if payload.From != "" && payload.Body != "" {
		h.processInbound(c, payload.From, payload.Body)
	}

	return c.SendStatus(fiber.StatusOK)
}

// processInbound implements the gate contract: log the inbound message
// first, then check the allow-list, and only then run the state machine.
// Unauthorized traffic stays visible in the log but gets no reply.
func (h *WhatsAppHandler) processInbound(c *fiber.Ctx, from, body string) {
	phone := models.NormalizePhone(from)
	log.Printf("WhatsApp message from %s: %s", phone, body)

	if _, err := h.store.CreateMessage(phone, body, models.DirectionReceived); err != nil {
		log.Printf("Failed to log inbound message from %s: %v", phone, err)
	}
	h.notifier.NotifyNewMessage()

	if _, err := h.store.GetAuthorizedNumberByPhone(phone); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Allow-list lookup failed for %s: %v", phone, err)
		} else {
			log.Printf("Number %s not authorized, message ignored", phone)
		}
		return
	}

	reply := h.bot.HandleMessage(c.Context(), phone, body)
	if reply == "" {
		return
	}

	if h.sender != nil {
		if err := h.sender.SendWhatsAppMessage(phone, reply); err != nil {
			log.Printf("Failed to send reply to %s: %v", phone, err)
		}
	} else {
		log.Printf("Reply to %s (not sent, Twilio not configured): %s", phone, reply)
	}

	if _, err := h.store.CreateMessage(phone, reply, models.DirectionSent); err != nil {
		log.Printf("Failed to log outbound message to %s: %v", phone, err)
	}
	h.notifier.NotifyNewMessage()
}

// TestWebhookPayload is the JSON body of the development test endpoint
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (for development).
// It runs the same gate and state machine but returns the reply inline.
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	phone := models.NormalizePhone(payload.From)

	if _, err := h.store.CreateMessage(phone, payload.Message, models.DirectionReceived); err != nil {
		log.Printf("Failed to log inbound test message: %v", err)
	}
	h.notifier.NotifyNewMessage()

	if _, err := h.store.GetAuthorizedNumberByPhone(phone); err != nil {
		return c.JSON(fiber.Map{
			"success":    true,
			"authorized": false,
			"response":   "",
		})
	}

	reply := h.bot.HandleMessage(c.Context(), phone, payload.Message)

	if _, err := h.store.CreateMessage(phone, reply, models.DirectionSent); err != nil {
		log.Printf("Failed to log outbound test message: %v", err)
	}
	h.notifier.NotifyNewMessage()

	return c.JSON(fiber.Map{
		"success":    true,
		"authorized": true,
		"response":   reply,
	})
}
