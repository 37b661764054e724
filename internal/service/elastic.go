package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"ecohub_back_end/internal/database"
	"ecohub_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const productIndex = "products"

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// IndexProduct indexe (ou réindexe) un produit. Appelé à chaque création
// et mise à jour, best effort : une panne d'Elastic ne bloque pas l'écriture.
func IndexProduct(p models.Product) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer:", p.Name)
		return
	}

	doc := map[string]interface{}{
		"id":                       p.ID.String(),
		"vendor_id":                p.VendorID.String(),
		"category_id":              p.CategoryID.String(),
		"name":                     p.Name,
		"slug":                     p.Slug,
		"description":              p.Description,
		"price":                    p.FinalPrice(),
		"energy_efficiency_rating": p.EnergyEfficiencyRating,
		"carbon_footprint":         p.CarbonFootprint,
		"recyclable_percentage":    p.RecyclablePercentage,
		"certifications":           p.Certifications,
		"is_featured":              p.IsFeatured,
		"is_active":                p.IsActive,
	}

	data, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Name, res.String())
	} else {
		log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	}
}

// RemoveProduct retire un produit de l'index (désactivation)
func RemoveProduct(productID string) {
	if database.Elastic == nil {
		return
	}
	req := esapi.DeleteRequest{Index: productIndex, DocumentID: productID, Refresh: "true"}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur suppression Elastic:", err)
		return
	}
	res.Body.Close()
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// SearchFilters affine la recherche plein texte
type SearchFilters struct {
	Certification string
	EnergyRating  string
	MaxCarbon     float64
}

// SearchProducts fait une recherche plein texte sur le nom, la description
// et les certifications, filtrée sur les produits actifs
func SearchProducts(query string, filters SearchFilters) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name^2", "description", "certifications"},
			},
		},
	}
	filter := []map[string]interface{}{
		{"term": map[string]interface{}{"is_active": true}},
	}
	if filters.Certification != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"certifications": filters.Certification},
		})
	}
	if filters.EnergyRating != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"energy_efficiency_rating": filters.EnergyRating},
		})
	}
	if filters.MaxCarbon > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"carbon_footprint": map[string]interface{}{"lte": filters.MaxCarbon}},
		})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{productIndex},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		json.NewDecoder(res.Body).Decode(&e)
		log.Printf("❌ Elasticsearch erreur: %+v", e)
		return nil, errors.New("index non trouvé ou vide")
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}

	hitsData, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.New("réponse Elastic invalide (pas de hits)")
	}

	hitsArray, ok := hitsData["hits"].([]interface{})
	if !ok {
		return []map[string]interface{}{}, nil
	}

	results := make([]map[string]interface{}, 0, len(hitsArray))
	for _, hit := range hitsArray {
		hitMap, _ := hit.(map[string]interface{})
		if source, ok := hitMap["_source"].(map[string]interface{}); ok {
			results = append(results, source)
		}
	}

	return results, nil
}
