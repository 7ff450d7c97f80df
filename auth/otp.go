package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"roamly/db"
	"roamly/emailer"
	"roamly/rdx"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const otpTTL = 10 * time.Minute

var mailer emailer.Mailer

// SetMailer wires the outbound mailer. Called from main after the
// environment is loaded.
func SetMailer(m emailer.Mailer) {
	mailer = m
}

func sendVerificationOTP(email string) {
	if mailer == nil {
		return
	}

	otp := utils.GenerateRandomDigitString(6)
	if err := rdx.SetWithExpiry("otp:"+email, otp, otpTTL); err != nil {
		log.Printf("Failed to cache OTP for %s: %v", email, err)
		return
	}

	if err := mailer.Send(email, "Email Verification", "Your verification code is: "+otp); err != nil {
		log.Printf("Failed to send OTP email to %s: %v", email, err)
	}
}

// POST /api/auth/verify-otp
func VerifyOTPHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" || input.OTP == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	storedOTP, err := rdx.RdxGet("otp:" + input.Email)
	if err != nil || storedOTP != input.OTP {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"email": input.Email},
		bson.M{"$set": bson.M{"email_verified": true}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify user")
		return
	}

	if err := rdx.RdxDel("otp:" + input.Email); err != nil {
		log.Printf("Failed to clean up OTP for %s: %v", input.Email, err)
	}

	utils.SendResponse(w, http.StatusOK, nil, "Email verified", nil)
}
