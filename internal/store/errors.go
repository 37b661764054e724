package store

import "errors"

// Erreurs métier renvoyées par le store et les services.
// Les handlers les traduisent en statuts HTTP, jamais l'inverse.
var (
	ErrNotFound             = errors.New("ressource introuvable")
	ErrOutOfStock           = errors.New("stock épuisé")
	ErrQuantityExceedsStock = errors.New("quantité supérieure au stock disponible")
	ErrInvalidQuantity      = errors.New("quantité invalide")
	ErrEmptyCart            = errors.New("panier vide")
	ErrDuplicateReview      = errors.New("avis déjà déposé pour ce produit")
	ErrInvalidRating        = errors.New("note invalide (doit être entre 1 et 5)")
	ErrAlreadyVendor        = errors.New("profil vendeur déjà existant")
	ErrUnauthorized         = errors.New("action non autorisée")
	ErrInvalidTransition    = errors.New("transition de statut invalide")
	ErrAlreadyExists        = errors.New("ressource déjà existante")
)
