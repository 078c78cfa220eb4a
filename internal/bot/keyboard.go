package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/money"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/order"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/register"
)

// Callback data is "<action>" or "<action>:<item name>".
const (
	actionAdd       = "add"
	actionIncrement = "inc"
	actionDecrement = "dec"
	actionRemove    = "del"
	actionCheckout  = "checkout"
	actionCancel    = "cancel"
	actionMenu      = "menu"
)

func callbackData(action, name string) string {
	if name == "" {
		return action
	}
	return action + ":" + name
}

func parseCallback(data string) (action, name string) {
	action, name, _ = strings.Cut(data, ":")
	return action, name
}

func menuKeyboard(items []catalog.MenuItem, currency string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for _, it := range items {
		label := fmt.Sprintf("%s %s", it.Name, money.Format(currency, it.UnitPrice))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData(actionAdd, it.Name)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func orderKeyboard(snap order.Snapshot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(snap.Lines)+1)
	for _, ln := range snap.Lines {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("+ "+ln.Name, callbackData(actionIncrement, ln.Name)),
			tgbotapi.NewInlineKeyboardButtonData("-", callbackData(actionDecrement, ln.Name)),
			tgbotapi.NewInlineKeyboardButtonData("Delete", callbackData(actionRemove, ln.Name)),
		))
	}

	last := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Menu", actionMenu))
	if len(snap.Lines) > 0 {
		last = append(last,
			tgbotapi.NewInlineKeyboardButtonData("Checkout", actionCheckout),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", actionCancel),
		)
	}
	rows = append(rows, last)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func orderText(currency string, snap order.Snapshot) string {
	var b strings.Builder
	if len(snap.Lines) == 0 {
		b.WriteString("Order is empty.\n")
	} else {
		b.WriteString("Order:\n")
		for _, ln := range snap.Lines {
			fmt.Fprintf(&b, "%s x%d - %s\n", ln.Name, ln.Quantity, money.Format(currency, ln.LineTotal))
		}
	}
	b.WriteString("\n")
	b.WriteString(register.TotalText(currency, snap.Total))
	return b.String()
}
