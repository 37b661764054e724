package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const (
	// Frais de port fixes et TVA, comme sur la boutique d'origine
	ShippingCost = 10.00
	TaxRate      = 0.08

	// bornage des relectures quand une transition de statut perd la course
	cancelMaxRetries = 10
)

// CheckoutService transforme un panier mutable en commande immuable.
//
// Le store ne donne pas de transaction multi-lignes : l'atomicité est
// obtenue par une saga avec compensations. L'ordre des étapes fait que le
// pire échec laisse le système dans son état initial : pas de commande
// orpheline, pas de stock décrémenté sans commande.
type CheckoutService struct {
	store store.Store
}

func NewCheckoutService(st store.Store) *CheckoutService {
	return &CheckoutService{store: st}
}

type checkoutLine struct {
	item      models.CartItem
	product   models.Product
	productID gocql.UUID
}

// PlaceOrder exécute le checkout complet :
//  1. panier non vide, produits actifs
//  2. réservation du stock par décréments conditionnels (un seul gagnant
//     sous concurrence : jamais de survente)
//  3. montants figés (sous-total au prix du panier, port fixe, TVA 8 %)
//  4. commande + items persistés en une écriture
//  5. panier vidé, compteur carbone de l'utilisateur incrémenté
//
// Tout échec après la réservation déclenche les compensations inverses.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, shipping models.ShippingInfo) (models.Order, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	if len(cart.Items) == 0 {
		return models.Order{}, store.ErrEmptyCart
	}

	lines := make([]checkoutLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		pid, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			return models.Order{}, fmt.Errorf("produit %s: %w", item.ProductID, store.ErrNotFound)
		}
		p, err := s.store.GetProduct(ctx, pid)
		if err != nil {
			return models.Order{}, fmt.Errorf("produit %s: %w", item.ProductID, err)
		}
		if !p.IsActive {
			return models.Order{}, fmt.Errorf("produit %s retiré de la vente: %w", p.Name, store.ErrNotFound)
		}
		lines = append(lines, checkoutLine{item: item, product: p, productID: pid})
	}

	// Réservation du stock. Le décrément est conditionnel côté store :
	// sous deux checkouts concurrents sur un stock de 1, un seul passe.
	var reserved []checkoutLine
	for _, l := range lines {
		if err := s.store.DecrementStock(ctx, l.productID, l.item.Quantity); err != nil {
			s.releaseStock(ctx, reserved)
			if err == store.ErrOutOfStock {
				return models.Order{}, fmt.Errorf("%s: %w", l.product.Name, store.ErrOutOfStock)
			}
			return models.Order{}, err
		}
		reserved = append(reserved, l)
	}

	var subtotal, carbonOffset float64
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		// prix unitaire copié depuis le panier (figé à l'ajout), pas relu
		subtotal += l.item.Price * float64(l.item.Quantity)
		carbonOffset += l.product.CarbonFootprint * float64(l.item.Quantity)
		items = append(items, models.OrderItem{
			ProductID: l.item.ProductID,
			Name:      l.item.Name,
			Quantity:  l.item.Quantity,
			Price:     l.item.Price,
		})
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * TaxRate)
	total := round2(subtotal + ShippingCost + tax)

	order := models.Order{
		OrderNumber:       generateOrderNumber(),
		UserID:            userID,
		Subtotal:          subtotal,
		ShippingCost:      ShippingCost,
		Tax:               tax,
		Total:             total,
		TotalCarbonOffset: carbonOffset,
		ShippingAddress:   shipping.Address,
		ShippingCity:      shipping.City,
		ShippingState:     shipping.State,
		ShippingZip:       shipping.Zip,
		ShippingCountry:   shipping.Country,
		Status:            models.OrderStatusPending,
		Items:             items,
		CreatedAt:         time.Now(),
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		s.releaseStock(ctx, reserved)
		return models.Order{}, err
	}

	if err := s.store.ClearCart(ctx, userID); err != nil {
		s.compensateOrder(ctx, order, reserved, cart)
		return models.Order{}, err
	}

	if err := s.store.AddCarbonOffset(ctx, userID, carbonOffset); err != nil {
		s.compensateOrder(ctx, order, reserved, cart)
		return models.Order{}, err
	}

	// Traçabilité du stock et alertes : best effort, hors du chemin critique
	for _, l := range reserved {
		s.recordSale(ctx, l, order.OrderNumber, userID)
	}

	log.Printf("🧾 Commande %s créée pour %s (%.2f€, %.1f kg CO2)",
		order.OrderNumber, userID, order.Total, order.TotalCarbonOffset)
	return order, nil
}

// releaseStock rend les quantités déjà réservées (compensation)
func (s *CheckoutService) releaseStock(ctx context.Context, reserved []checkoutLine) {
	for _, l := range reserved {
		if err := s.store.IncrementStock(ctx, l.productID, l.item.Quantity); err != nil {
			log.Printf("❌ Compensation stock impossible pour %s: %v", l.productID, err)
		}
	}
}

// compensateOrder défait tout : commande supprimée, stock rendu, panier restauré
func (s *CheckoutService) compensateOrder(ctx context.Context, order models.Order, reserved []checkoutLine, cart models.Cart) {
	if err := s.store.DeleteOrder(ctx, order.OrderNumber); err != nil {
		log.Printf("❌ Compensation commande impossible pour %s: %v", order.OrderNumber, err)
	}
	s.releaseStock(ctx, reserved)
	if err := s.store.SaveCart(ctx, cart); err != nil {
		log.Printf("❌ Restauration panier impossible pour %s: %v", cart.UserID, err)
	}
}

func (s *CheckoutService) recordSale(ctx context.Context, l checkoutLine, orderNumber, userID string) {
	p, err := s.store.GetProduct(ctx, l.productID)
	if err != nil {
		return
	}
	mv := models.StockMovement{
		ID:        gocql.TimeUUID(),
		ProductID: l.productID,
		Type:      "sale",
		Quantity:  l.item.Quantity,
		PrevStock: p.Stock + l.item.Quantity,
		NewStock:  p.Stock,
		Reason:    "commande " + orderNumber,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.store.RecordStockMovement(ctx, mv); err != nil {
		log.Printf("⚠️ Mouvement de stock non enregistré pour %s: %v", l.productID, err)
	}

	threshold := p.LowStockThreshold
	if threshold == 0 {
		threshold = 10 // seuil par défaut
	}
	var alertType string
	switch {
	case p.Stock == 0:
		alertType = "out_of_stock"
	case p.Stock <= threshold:
		alertType = "low_stock"
	default:
		return
	}
	alert := models.StockAlert{
		ID:             gocql.TimeUUID(),
		ProductID:      l.productID,
		ProductName:    p.Name,
		CurrentStock:   p.Stock,
		ThresholdStock: threshold,
		AlertType:      alertType,
		CreatedAt:      time.Now(),
	}
	if err := s.store.CreateStockAlert(ctx, alert); err != nil {
		log.Printf("⚠️ Alerte stock non créée pour %s: %v", p.Name, err)
	} else {
		log.Printf("🚨 Alerte stock pour %s: %s", p.Name, alertType)
	}
}

// CancelOrder annule une commande non expédiée et rend le stock.
// Réservé au propriétaire de la commande ou à un admin.
func (s *CheckoutService) CancelOrder(ctx context.Context, actorID, actorRole, orderNumber string) (models.Order, error) {
	for attempt := 0; attempt < cancelMaxRetries; attempt++ {
		order, err := s.store.GetOrder(ctx, orderNumber)
		if err != nil {
			return models.Order{}, err
		}
		if order.UserID != actorID && actorRole != models.RoleAdmin {
			return models.Order{}, store.ErrUnauthorized
		}
		switch order.Status {
		case models.OrderStatusCancelled:
			return order, nil // idempotent
		case models.OrderStatusPending, models.OrderStatusPaid:
			// annulable
		default:
			return models.Order{}, store.ErrInvalidTransition
		}

		applied, err := s.store.TransitionOrderStatus(ctx, orderNumber, order.Status, models.OrderStatusCancelled)
		if err != nil {
			return models.Order{}, err
		}
		if !applied {
			// le statut a bougé sous nos pieds (annulation ou paiement
			// concurrent), on relit et on re-décide
			continue
		}

		// On ne rend le stock que si NOTRE transition a été appliquée :
		// deux annulations concurrentes ne doivent restituer qu'une fois
		for _, item := range order.Items {
			pid, err := gocql.ParseUUID(item.ProductID)
			if err != nil {
				continue
			}
			if err := s.store.IncrementStock(ctx, pid, item.Quantity); err != nil {
				log.Printf("❌ Restauration stock impossible pour %s: %v", item.ProductID, err)
			}
		}
		order.Status = models.OrderStatusCancelled
		return order, nil
	}
	return models.Order{}, fmt.Errorf("annulation: trop de contention pour %s", orderNumber)
}

// generateOrderNumber : "ECO-20250114-4F6A2C1B", unique et lisible
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ECO-%s-%s", time.Now().Format("20060102"), suffix)
}
