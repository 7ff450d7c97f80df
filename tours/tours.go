package tours

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"time"

	"roamly/db"
	"roamly/globals"
	"roamly/models"
	"roamly/mq"
	"roamly/rdx"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cacheTTL = 10 * time.Minute

// POST /api/tours
func CreateTour(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var tour models.Tour
	if err := json.NewDecoder(r.Body).Decode(&tour); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if tour.Name == "" || tour.Price <= 0 || tour.Currency == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, price and currency are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tour.TourID = "t" + utils.GenerateRandomString(12)
	tour.CreatedBy = userID
	tour.CreatedAt = time.Now()
	tour.UpdatedAt = tour.CreatedAt

	if _, err := db.ToursCollection.InsertOne(ctx, tour); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create tour")
		return
	}

	go mq.Emit(context.Background(), "tour-created", models.Index{EntityType: "tour", EntityId: tour.TourID, Method: "POST"})

	utils.RespondWithJSON(w, http.StatusCreated, tour)
}

// GET /api/tours/:tourid
func GetTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tourID := ps.ByName("tourid")

	if cached, err := rdx.RdxGet("tour:" + tourID); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var tour models.Tour
	if err := db.ToursCollection.FindOne(ctx, bson.M{"tourid": tourID}).Decode(&tour); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
		return
	}

	if data, err := json.Marshal(tour); err == nil {
		if err := rdx.SetWithExpiry("tour:"+tourID, string(data), cacheTTL); err != nil {
			log.Printf("failed to cache tour %s: %v", tourID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, tour)
}

// GET /api/tours
func GetTours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	skip, limit := utils.ParsePagination(r, 10, 100)

	filter := bson.M{}
	if search := q.Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: search, Options: "i"}}
	}
	if difficulty := q.Get("difficulty"); difficulty != "" {
		filter["difficulty"] = difficulty
	}

	// Only the unfiltered first page is cached; it is what the landing
	// page hits on every load.
	cacheable := len(filter) == 0 && skip == 0 && q.Get("limit") == ""
	if cacheable {
		if cached, err := rdx.RdxGet("tours:list"); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		}
	}

	sort := utils.ParseSort(q.Get("sort"), bson.D{{Key: "created_at", Value: -1}}, map[string]bson.D{
		"price_asc":  {{Key: "price", Value: 1}},
		"price_desc": {{Key: "price", Value: -1}},
	})
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)

	tours, err := utils.FindAndDecode[models.Tour](ctx, db.ToursCollection, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve tours")
		return
	}

	resp := utils.M{"status": http.StatusOK, "ok": true, "tours": tours}
	if cacheable {
		if data, err := json.Marshal(resp); err == nil {
			if err := rdx.SetWithExpiry("tours:list", string(data), cacheTTL); err != nil {
				log.Printf("failed to cache tour list: %v", err)
			}
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PUT /api/tours/:tourid
func EditTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tourID := ps.ByName("tourid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tour, ok := loadOwnedTour(ctx, w, r, tourID)
	if !ok {
		return
	}

	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	allowed := map[string]bool{
		"name": true, "description": true, "location": true,
		"difficulty": true, "price": true, "currency": true, "max_group": true,
	}
	update := bson.M{}
	for k, v := range input {
		if allowed[k] {
			update[k] = v
		}
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No editable fields provided")
		return
	}
	update["updated_at"] = time.Now()

	if _, err := db.ToursCollection.UpdateOne(ctx, bson.M{"tourid": tourID}, bson.M{"$set": update}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update tour")
		return
	}

	invalidateTourCache(tour.TourID)
	go mq.Emit(context.Background(), "tour-edited", models.Index{EntityType: "tour", EntityId: tourID, Method: "PUT"})

	utils.SendResponse(w, http.StatusOK, nil, "Tour updated", nil)
}

// DELETE /api/tours/:tourid
func DeleteTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tourID := ps.ByName("tourid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tour, ok := loadOwnedTour(ctx, w, r, tourID)
	if !ok {
		return
	}

	if _, err := db.ToursCollection.DeleteOne(ctx, bson.M{"tourid": tourID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete tour")
		return
	}

	invalidateTourCache(tour.TourID)
	go mq.Emit(context.Background(), "tour-deleted", models.Index{EntityType: "tour", EntityId: tourID, Method: "DELETE"})

	utils.SendResponse(w, http.StatusOK, nil, "Tour deleted", nil)
}

// loadOwnedTour fetches the tour and enforces that the caller created it
// or carries the admin role. Writes the error response itself.
func loadOwnedTour(ctx context.Context, w http.ResponseWriter, r *http.Request, tourID string) (*models.Tour, bool) {
	var tour models.Tour
	if err := db.ToursCollection.FindOne(ctx, bson.M{"tourid": tourID}).Decode(&tour); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
		return nil, false
	}

	userID := utils.GetUserIDFromRequest(r)
	roles, _ := r.Context().Value(globals.RoleKey).([]string)
	if tour.CreatedBy != userID && !slices.Contains(roles, "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return &tour, true
}

func invalidateTourCache(tourID string) {
	for _, key := range []string{"tour:" + tourID, "tours:list"} {
		if err := rdx.RdxDel(key); err != nil {
			log.Printf("failed to invalidate %s: %v", key, err)
		}
	}
}
