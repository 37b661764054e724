package services

import (
	"context"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
)

// CartService : un panier par utilisateur, créé paresseusement.
// L'invariant quantité ≤ stock est vérifié à chaque mutation du panier ;
// le checkout re-vérifie de toute façon via le décrément conditionnel.
type CartService struct {
	store store.Store
}

func NewCartService(st store.Store) *CartService {
	return &CartService{store: st}
}

// Get retourne le panier de l'utilisateur (vide si jamais utilisé).
// Idempotent : deux appels successifs rendent le même panier.
func (s *CartService) Get(ctx context.Context, userID string) (models.Cart, error) {
	return s.store.GetCart(ctx, userID)
}

// AddItem ajoute une unité du produit au panier.
//   - produit inconnu ou inactif  → ErrNotFound
//   - stock nul                   → ErrOutOfStock
//   - quantité+1 > stock          → ErrQuantityExceedsStock (panier inchangé,
//     le handler le présente comme un avertissement, pas comme une erreur fatale)
//
// Le prix unitaire est figé ici, à l'ajout. Le checkout ne le relit pas.
func (s *CartService) AddItem(ctx context.Context, userID string, productID gocql.UUID) (models.Cart, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if !p.IsActive {
		return models.Cart{}, store.ErrNotFound
	}
	if p.Stock < 1 {
		return models.Cart{}, store.ErrOutOfStock
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}

	if item := cart.Item(productID.String()); item != nil {
		if item.Quantity+1 > p.Stock {
			return cart, store.ErrQuantityExceedsStock
		}
		item.Quantity++
	} else {
		imageURL := ""
		if len(p.ImageURLs) > 0 {
			imageURL = p.ImageURLs[0]
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID.String(),
			Name:      p.Name,
			Price:     p.FinalPrice(), // figé à l'ajout
			Quantity:  1,
			ImageURL:  imageURL,
		})
	}

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// SetQuantity fixe la quantité d'un item existant.
// ErrInvalidQuantity si ≤ 0, ErrQuantityExceedsStock si > stock.
// Le prix figé est rafraîchi au passage (c'est une mutation volontaire du panier).
func (s *CartService) SetQuantity(ctx context.Context, userID string, productID gocql.UUID, quantity int) (models.Cart, error) {
	if quantity <= 0 {
		return models.Cart{}, store.ErrInvalidQuantity
	}

	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if quantity > p.Stock {
		return models.Cart{}, store.ErrQuantityExceedsStock
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}
	item := cart.Item(productID.String())
	if item == nil {
		return models.Cart{}, store.ErrNotFound
	}
	item.Quantity = quantity
	item.Price = p.FinalPrice()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// RemoveItem retire l'item du panier, sans condition
func (s *CartService) RemoveItem(ctx context.Context, userID string, productID gocql.UUID) (models.Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}

	pid := productID.String()
	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != pid {
			items = append(items, item)
		}
	}
	cart.Items = items

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}
