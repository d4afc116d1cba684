package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"officine_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendOrderEmail envoie un e-mail HTML avec, si fourni, le reçu PDF en pièce
// jointe.
func SendOrderEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@officine.fr"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("recu_officine.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// BuildOrderConfirmationHTML génère le corps de l'e-mail de confirmation,
// avec le QR de retrait en pharmacie inline.
func BuildOrderConfirmationHTML(order *models.Order, qrDataURI string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.ProductName, item.PharmacyName, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	qrHTML := ""
	if qrDataURI != "" {
		qrHTML = fmt.Sprintf(`
		<div style="text-align: center; margin: 20px 0;">
			<p>Présentez ce QR code en pharmacie pour retirer votre commande :</p>
			<img src="%s" alt="QR de retrait" width="200" height="200" />
			<p style="font-size: 20px; letter-spacing: 4px;"><strong>%s</strong></p>
		</div>`, qrDataURI, order.PickupCode)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Votre commande Officine</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Commande reçue</h2>
		<p>Bonjour,</p>
		<p>Votre commande <strong>%s</strong> a bien été enregistrée. Elle est en attente de
		validation par la pharmacie ; vous serez prévenu dès qu'elle sera prête.</p>

		<h3>Détails</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Pharmacie</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Qté</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Prix</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="4" style="padding: 8px; text-align: right; font-weight: bold;">Total :</td>
					<td style="padding: 8px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>
		%s
		<p style="margin-top: 30px; color: #555;">
			À bientôt,<br>
			<strong>L'équipe Officine</strong>
		</p>
	</div>
</body>
</html>`, order.ID, itemsHTML, order.TotalAmount, qrHTML)
}
