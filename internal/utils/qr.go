package utils

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
)

// GenerateOrderTrackingQR encode l'URL de suivi d'une commande en QR,
// retourné en data URI prêt à mettre dans un <img src="...">
func GenerateOrderTrackingQR(orderNumber string) (string, error) {
	base := os.Getenv("FRONTEND_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	trackingURL := fmt.Sprintf("%s/orders/%s", base, orderNumber)

	png, err := qrcode.Encode(trackingURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
