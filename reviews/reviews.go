package reviews

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"roamly/db"
	"roamly/globals"
	"roamly/models"
	"roamly/mq"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GET /api/tours/:tourid/reviews
func GetReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tourID := ps.ByName("tourid")

	skip, limit := utils.ParsePagination(r, 10, 100)
	sort := utils.ParseSort(r.URL.Query().Get("sort"), bson.D{{Key: "date", Value: -1}}, map[string]bson.D{
		"rating_asc":  {{Key: "rating", Value: 1}},
		"rating_desc": {{Key: "rating", Value: -1}},
	})

	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)

	reviews, err := utils.FindAndDecode[models.Review](ctx, db.ReviewsCollection, bson.M{"tourid": tourID}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": http.StatusOK, "ok": true, "reviews": reviews})
}

// POST /api/tours/:tourid/reviews
func AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tourID := ps.ByName("tourid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := db.ToursCollection.FindOne(ctx, bson.M{"tourid": tourID}).Err(); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
		return
	}

	count, err := db.ReviewsCollection.CountDocuments(ctx, bson.M{"userid": userID, "tourid": tourID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "You have already reviewed this tour")
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil || review.Rating < 1 || review.Rating > 5 || review.Comment == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review data")
		return
	}

	review.ReviewID = utils.GenerateRandomString(16)
	review.UserID = userID
	review.TourID = tourID
	review.Date = time.Now()

	if _, err := db.ReviewsCollection.InsertOne(ctx, review); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert review")
		return
	}

	go mq.Emit(context.Background(), "review-added", models.Index{EntityType: "review", EntityId: review.ReviewID, Method: "POST", ItemId: tourID, ItemType: "tour"})

	utils.RespondWithJSON(w, http.StatusCreated, review)
}

// PUT /api/tours/:tourid/reviews/:reviewId
func EditReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reviewID := ps.ByName("reviewId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	review, ok := loadOwnedReview(ctx, w, r, reviewID)
	if !ok {
		return
	}

	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Rating < 1 || input.Rating > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid update data")
		return
	}

	_, err := db.ReviewsCollection.UpdateOne(ctx,
		bson.M{"reviewid": reviewID},
		bson.M{"$set": bson.M{"rating": input.Rating, "comment": input.Comment, "date": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}

	go mq.Emit(context.Background(), "review-edited", models.Index{EntityType: "review", EntityId: reviewID, Method: "PUT", ItemId: review.TourID, ItemType: "tour"})

	utils.SendResponse(w, http.StatusOK, nil, "Review updated", nil)
}

// DELETE /api/tours/:tourid/reviews/:reviewId
func DeleteReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reviewID := ps.ByName("reviewId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	review, ok := loadOwnedReview(ctx, w, r, reviewID)
	if !ok {
		return
	}

	if _, err := db.ReviewsCollection.DeleteOne(ctx, bson.M{"reviewid": reviewID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	go mq.Emit(context.Background(), "review-deleted", models.Index{EntityType: "review", EntityId: reviewID, Method: "DELETE", ItemId: review.TourID, ItemType: "tour"})

	utils.SendResponse(w, http.StatusOK, nil, "Review deleted", nil)
}

func loadOwnedReview(ctx context.Context, w http.ResponseWriter, r *http.Request, reviewID string) (*models.Review, bool) {
	var review models.Review
	if err := db.ReviewsCollection.FindOne(ctx, bson.M{"reviewid": reviewID}).Decode(&review); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Review not found")
		return nil, false
	}

	userID := utils.GetUserIDFromRequest(r)
	roles, _ := r.Context().Value(globals.RoleKey).([]string)
	if review.UserID != userID && !slices.Contains(roles, "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return &review, true
}
