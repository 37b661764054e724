package utils

import (
	"fmt"
	"log"
	"os"

	"ecohub_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendEmail envoie un email HTML via le relais SMTP configuré
func SendEmail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@ecohub.example.com"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

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

// SendOrderConfirmationEmail envoie la confirmation de commande avec le
// récapitulatif des montants, l'impact carbone compensé et un QR de suivi
func SendOrderConfirmationEmail(order models.Order, userEmail string) error {
	qr, err := GenerateOrderTrackingQR(order.OrderNumber)
	if err != nil {
		log.Printf("⚠️ QR de suivi non généré pour %s: %v", order.OrderNumber, err)
		qr = ""
	}

	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	qrHTML := ""
	if qr != "" {
		qrHTML = fmt.Sprintf(`
			<p style="text-align: center; margin-top: 30px;">
				<img src="%s" alt="Suivi de commande" width="160" height="160"/><br>
				<span style="color: #555; font-size: 13px;">Scannez pour suivre votre commande</span>
			</p>`, qr)
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f4f8f4; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #2e7d32;">🌱 Merci pour votre commande !</h2>
		<p>Votre commande <strong>%s</strong> est confirmée.</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #e8f5e9;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>

		<table style="width: 100%%; margin: 10px 0;">
			<tr><td style="text-align: right;">Sous-total :</td><td style="text-align: right; width: 100px;">%.2f€</td></tr>
			<tr><td style="text-align: right;">Livraison :</td><td style="text-align: right;">%.2f€</td></tr>
			<tr><td style="text-align: right;">TVA :</td><td style="text-align: right;">%.2f€</td></tr>
			<tr><td style="text-align: right; font-weight: bold;">Total :</td><td style="text-align: right; font-weight: bold;">%.2f€</td></tr>
		</table>

		<div style="background-color: #e8f5e9; padding: 15px; border-radius: 8px; margin: 20px 0;">
			<p style="margin: 0; color: #2e7d32;">
				🌍 Cette commande compense <strong>%.1f kg de CO2</strong> par an.
			</p>
		</div>
		%s
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe EcoHub</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, itemsHTML, order.Subtotal, order.ShippingCost, order.Tax, order.Total,
		order.TotalCarbonOffset, qrHTML)

	return SendEmail(userEmail, "🌱 Confirmation de votre commande "+order.OrderNumber, html)
}

// SendOrderStatusEmail notifie un changement de statut de commande
func SendOrderStatusEmail(order models.Order, userEmail, newStatus string) error {
	var subject, message string
	switch newStatus {
	case models.OrderStatusPaid:
		subject = "✅ Paiement confirmé - EcoHub"
		message = "Votre paiement a bien été reçu."
	case models.OrderStatusShipped:
		subject = "📦 Votre commande a été expédiée - EcoHub"
		message = "Votre commande est en route."
	case models.OrderStatusDelivered:
		subject = "🎉 Votre commande a été livrée - EcoHub"
		message = "Votre commande a été livrée. Bonne utilisation !"
	case models.OrderStatusCancelled:
		subject = "❌ Commande annulée - EcoHub"
		message = "Votre commande a été annulée. Le stock a été remis en vente."
	default:
		subject = "📋 Mise à jour de votre commande - EcoHub"
		message = "Le statut de votre commande a changé : " + newStatus
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f4f8f4; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #2e7d32;">Commande %s</h2>
		<p>%s</p>
		<p style="margin-top: 30px; color: #555;">L'équipe EcoHub</p>
	</div>
</body>
</html>`, order.OrderNumber, message)

	if err := SendEmail(userEmail, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}
	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

// SendVendorStatusEmail notifie un vendeur de l'issue de sa vérification
func SendVendorStatusEmail(vendor models.Vendor, userEmail, newStatus string) error {
	var subject, message string
	switch newStatus {
	case models.VendorStatusVerified:
		subject = "✅ Votre boutique est vérifiée - EcoHub"
		message = "Félicitations ! Votre boutique <strong>" + vendor.CompanyName + "</strong> est vérifiée. Vous pouvez publier vos produits."
	case models.VendorStatusRejected:
		subject = "❌ Candidature refusée - EcoHub"
		message = "Votre candidature pour <strong>" + vendor.CompanyName + "</strong> n'a pas été retenue."
	case models.VendorStatusSuspended:
		subject = "⚠️ Boutique suspendue - EcoHub"
		message = "Votre boutique <strong>" + vendor.CompanyName + "</strong> est suspendue. Contactez le support."
	default:
		subject = "📋 Statut de votre boutique - EcoHub"
		message = "Le statut de votre boutique a changé : " + newStatus
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f4f8f4; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #2e7d32;">🏪 %s</h2>
		<p>%s</p>
		<p style="margin-top: 30px; color: #555;">L'équipe EcoHub</p>
	</div>
</body>
</html>`, vendor.CompanyName, message)

	if err := SendEmail(userEmail, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email vendeur: %v", err)
		return err
	}
	return nil
}

// SendWelcomeEmail envoie l'email de bienvenue après inscription
func SendWelcomeEmail(userEmail, userName string) error {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f4f8f4; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #2e7d32;">🌱 Bienvenue sur EcoHub, %s !</h2>
		<p>Merci de rejoindre le marché des produits durables.</p>
		<p>Chaque achat alimente votre compteur de CO2 compensé : suivez votre impact depuis votre profil.</p>
		<p style="margin-top: 30px; color: #555;">L'équipe EcoHub</p>
	</div>
</body>
</html>`, userName)

	return SendEmail(userEmail, "🌱 Bienvenue sur EcoHub !", html)
}
