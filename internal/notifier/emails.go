package notifier

import (
	"fmt"
	"strings"

	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/mailer"
	"github.com/as-electrica/storefront-backend/pkg/outbox/payloads"
)

// confirmationEmail builds the sign-up confirmation message carrying the
// single-use activation link.
func confirmationEmail(store config.StoreConfig, data payloads.CustomerRegisteredData) mailer.Message {
	link := fmt.Sprintf("%s/confirm/%s", strings.TrimRight(store.SiteURL, "/"), data.ConfirmationCode)
	plain := fmt.Sprintf(
		"Здравствуйте%s!\n\nВы зарегистрировались в интернет-магазине АС-Электрика.\nДля подтверждения адреса перейдите по ссылке:\n\n%s\n\nЕсли вы не регистрировались, просто проигнорируйте это письмо.",
		greetingSuffix(data.FirstName), link)
	html := fmt.Sprintf(
		"<p>Здравствуйте%s!</p><p>Вы зарегистрировались в интернет-магазине АС-Электрика. Для подтверждения адреса перейдите по ссылке:</p><p><a href=%q>%s</a></p><p>Если вы не регистрировались, просто проигнорируйте это письмо.</p>",
		greetingSuffix(data.FirstName), link, link)
	return mailer.Message{
		ToName:    data.FirstName,
		ToAddress: data.Email,
		Subject:   "Подтверждение регистрации",
		PlainBody: plain,
		HTMLBody:  html,
	}
}

// orderPlacedEmail builds the customer's order receipt.
func orderPlacedEmail(data payloads.OrderPlacedData) mailer.Message {
	var lines strings.Builder
	for _, line := range data.Lines {
		fmt.Fprintf(&lines, "  %s (%s) — %d x %s\n", line.Title, line.Article, line.Quantity, line.UnitPrice)
	}
	plain := fmt.Sprintf(
		"Здравствуйте%s!\n\nВаш заказ %s принят.\n\nСостав заказа:\n%s\nИтого: %s\n\nМы свяжемся с вами для уточнения деталей.",
		greetingSuffix(data.FirstName), shortID(data.OrderID.String()), lines.String(), data.Total)
	return mailer.Message{
		ToName:    data.FirstName,
		ToAddress: data.Email,
		Subject:   fmt.Sprintf("Заказ %s принят", shortID(data.OrderID.String())),
		PlainBody: plain,
		HTMLBody:  "<pre>" + plain + "</pre>",
	}
}

// orderPlacedStaffEmail builds the back-office copy of a new order.
func orderPlacedStaffEmail(store config.StoreConfig, data payloads.OrderPlacedData) mailer.Message {
	var lines strings.Builder
	for _, line := range data.Lines {
		fmt.Fprintf(&lines, "  %s (%s) — %d x %s\n", line.Title, line.Article, line.Quantity, line.UnitPrice)
	}
	plain := fmt.Sprintf(
		"Новый заказ %s\n\nПокупатель: %s <%s>\nТелефон: %s\n\nСостав заказа:\n%s\nИтого: %s",
		data.OrderID, data.FirstName, data.Email, data.Phone, lines.String(), data.Total)
	return mailer.Message{
		ToAddress: store.StaffEmail,
		Subject:   fmt.Sprintf("Новый заказ %s", shortID(data.OrderID.String())),
		PlainBody: plain,
		HTMLBody:  "<pre>" + plain + "</pre>",
	}
}

// orderReadyEmail tells the customer their order is ready for pickup.
func orderReadyEmail(data payloads.OrderReadyData) mailer.Message {
	plain := fmt.Sprintf(
		"Здравствуйте%s!\n\nВаш заказ %s готов к выдаче. Ждём вас в магазине.",
		greetingSuffix(data.FirstName), shortID(data.OrderID.String()))
	return mailer.Message{
		ToName:    data.FirstName,
		ToAddress: data.Email,
		Subject:   fmt.Sprintf("Заказ %s готов к выдаче", shortID(data.OrderID.String())),
		PlainBody: plain,
		HTMLBody:  "<pre>" + plain + "</pre>",
	}
}

func greetingSuffix(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + firstName
}

// shortID keeps order references readable in subject lines.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
