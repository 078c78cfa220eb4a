// Package bot lets a Telegram chat drive its own register: the menu and the
// order are inline keyboards, and the payment is typed as a message.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/events"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/money"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/order"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/register"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api       Sender
	registers *register.Registry
	formatter receipt.Formatter
	logger    *log.Logger

	// Chats that pressed Checkout and owe a payment amount.
	awaitingMu sync.Mutex
	awaiting   map[int64]bool
}

func New(api Sender, registers *register.Registry, currency string, logger *log.Logger) *Bot {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Bot{
		api:       api,
		registers: registers,
		formatter: receipt.Formatter{Currency: currency},
		logger:    logger,
		awaiting:  make(map[int64]bool),
	}
}

// Run long-polls Telegram until ctx is cancelled.
func Run(ctx context.Context, api *tgbotapi.BotAPI, b *Bot) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.Chat == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start" || text == "/menu":
		b.setAwaiting(chatID, false)
		b.sendMenu(chatID)
	case text == "/order":
		b.sendOrder(chatID)
	case b.isAwaiting(chatID):
		b.handlePayment(ctx, msg, text)
	default:
		b.send(chatID, "Use /menu to pick items.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	reg, err := b.register(chatID)
	if err != nil {
		b.answer(cq.ID, "")
		b.logger.Printf("open register for chat %d: %v", chatID, err)
		return
	}

	action, name := parseCallback(cq.Data)
	switch action {
	case actionMenu:
		b.answer(cq.ID, "")
		b.sendMenu(chatID)
	case actionAdd:
		snap, err := reg.Add(name)
		if err != nil {
			b.answer(cq.ID, errorText(err))
			return
		}
		b.answer(cq.ID, register.MsgItemAdded)
		b.sendWithInline(chatID, orderText(b.formatter.Currency, snap), orderKeyboard(snap))
	case actionIncrement, actionDecrement, actionRemove:
		var snap order.Snapshot
		switch action {
		case actionIncrement:
			snap, err = reg.Increment(name)
		case actionDecrement:
			snap, err = reg.Decrement(name)
		default:
			snap, err = reg.Remove(name)
		}
		if err != nil {
			b.answer(cq.ID, errorText(err))
			return
		}
		b.answer(cq.ID, "")
		b.editOrder(chatID, messageID, snap)
	case actionCheckout:
		b.answer(cq.ID, "")
		b.setAwaiting(chatID, true)
		total := reg.Snapshot().Total
		b.send(chatID, register.TotalText(b.formatter.Currency, total)+"\nEnter the payment amount:")
	case actionCancel:
		b.answer(cq.ID, "")
		b.setAwaiting(chatID, false)
		snap := reg.Clear()
		b.editOrder(chatID, messageID, snap)
	default:
		b.answer(cq.ID, "")
	}
}

func (b *Bot) handlePayment(ctx context.Context, msg *tgbotapi.Message, text string) {
	chatID := msg.Chat.ID

	payment, err := money.Parse(b.formatter.Currency, text)
	if err != nil {
		b.send(chatID, register.MsgInvalidInput)
		return
	}

	reg, err := b.register(chatID)
	if err != nil {
		b.logger.Printf("open register for chat %d: %v", chatID, err)
		return
	}

	meta := events.EventMeta{CausationID: "telegram:" + strconv.Itoa(msg.MessageID)}
	rec, err := reg.Checkout(ctx, payment, meta)
	if err != nil {
		var insufficient *order.InsufficientPaymentError
		if errors.As(err, &insufficient) {
			b.send(chatID, register.MsgInsufficientPayment+"\n"+register.TotalText(b.formatter.Currency, insufficient.Total))
			return
		}
		b.logger.Printf("checkout for chat %d failed: %v", chatID, err)
		b.send(chatID, "Checkout failed, please try again.")
		return
	}

	b.setAwaiting(chatID, false)
	b.send(chatID, b.formatter.Format(rec))
}

func (b *Bot) sendMenu(chatID int64) {
	items := b.registers.Catalog().Items()
	b.sendWithInline(chatID, "Menu:", menuKeyboard(items, b.formatter.Currency))
}

func (b *Bot) sendOrder(chatID int64) {
	reg, err := b.register(chatID)
	if err != nil {
		b.logger.Printf("open register for chat %d: %v", chatID, err)
		return
	}
	snap := reg.Snapshot()
	b.sendWithInline(chatID, orderText(b.formatter.Currency, snap), orderKeyboard(snap))
}

func (b *Bot) editOrder(chatID int64, messageID int, snap order.Snapshot) {
	kb := orderKeyboard(snap)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, orderText(b.formatter.Currency, snap))
	edit.ReplyMarkup = &kb
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Printf("edit error: %v", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("send error: %v", err)
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("send error: %v", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Printf("answer callback error: %v", err)
	}
}

func (b *Bot) register(chatID int64) (*register.Register, error) {
	return b.registers.Get(RegisterID(chatID))
}

// RegisterID names the register that belongs to a chat.
func RegisterID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

func (b *Bot) isAwaiting(chatID int64) bool {
	b.awaitingMu.Lock()
	defer b.awaitingMu.Unlock()
	return b.awaiting[chatID]
}

func (b *Bot) setAwaiting(chatID int64, v bool) {
	b.awaitingMu.Lock()
	defer b.awaitingMu.Unlock()
	if v {
		b.awaiting[chatID] = true
		return
	}
	delete(b.awaiting, chatID)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, catalog.ErrUnknownItem):
		return "That item is not on the menu."
	case errors.Is(err, order.ErrItemNotFound):
		return "That item is no longer in the order."
	default:
		return "Something went wrong."
	}
}
