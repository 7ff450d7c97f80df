package tours

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"roamly/db"
	"roamly/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"

	_ "golang.org/x/image/webp"
)

const (
	tourPicDir = "static/tourpic"
	thumbWidth = 320
)

// POST /api/tours/:tourid/banner
// Accepts a multipart image, stores it with a thumbnail, and points the
// tour's banner field at the new file.
func UploadBanner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tourID := ps.ByName("tourid")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, ok := loadOwnedTour(ctx, w, r, tourID); !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("banner")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing banner file")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	if err := utils.EnsureDir(tourPicDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Storage unavailable")
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unreadable image")
		return
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	bannerPath := filepath.Join(tourPicDir, name+".jpg")
	if err := imaging.Save(img, bannerPath, imaging.JPEGQuality(85)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	thumbPath := filepath.Join(tourPicDir, name+"_thumb.jpg")
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		log.Printf("failed to save thumbnail for tour %s: %v", tourID, err)
	}

	banner := fmt.Sprintf("/%s", filepath.ToSlash(bannerPath))
	_, err = db.ToursCollection.UpdateOne(ctx,
		bson.M{"tourid": tourID},
		bson.M{"$set": bson.M{"banner": banner, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update tour")
		return
	}

	invalidateTourCache(tourID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"banner": banner})
}
