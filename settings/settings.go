package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"roamly/db"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserSettings represents per-user preferences.
type UserSettings struct {
	UserID        string `json:"userID,omitempty" bson:"userID"`
	Theme         string `json:"theme" bson:"theme"`
	Language      string `json:"language" bson:"language"`
	Currency      string `json:"currency" bson:"currency"`
	Notifications bool   `json:"notifications" bson:"notifications"`
	Newsletter    bool   `json:"newsletter" bson:"newsletter"`
	TimeZone      string `json:"time_zone" bson:"time_zone"`
}

func getDefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:        userID,
		Theme:         "light",
		Language:      "english",
		Currency:      "usd",
		Notifications: true,
		Newsletter:    false,
		TimeZone:      "UTC",
	}
}

var validSettings = map[string]bool{
	"theme":         true,
	"language":      true,
	"currency":      true,
	"notifications": true,
	"newsletter":    true,
	"time_zone":     true,
}

// GET /api/settings
// Inserts the defaults on first read.
func GetUserSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var userSettings UserSettings
	err := db.SettingsCollection.FindOne(ctx, bson.M{"userID": userID}).Decode(&userSettings)
	if err == mongo.ErrNoDocuments {
		userSettings = getDefaultSettings(userID)
		_, _ = db.SettingsCollection.InsertOne(ctx, userSettings)
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, userSettings)
}

// PUT /api/settings/:type
func UpdateUserSetting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	settingType := ps.ByName("type")

	if !validSettings[settingType] {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid setting type")
		return
	}

	var update struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	_, err := db.SettingsCollection.UpdateOne(ctx,
		bson.M{"userID": userID},
		bson.M{"$set": bson.M{settingType: update.Value}},
		opts,
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update setting")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"status":  "success",
		"message": "Setting updated",
		"type":    settingType,
		"value":   update.Value,
	})
}
