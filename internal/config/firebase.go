package config

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

var (
	FirebaseApp     *firebase.App
	FirestoreClient *firestore.Client
	AuthClient      *auth.Client
)

// InitFirebase initializes the Firebase Admin SDK, the Firestore client and
// the Auth client.
func InitFirebase(credentialsPath string) error {
	ctx := context.Background()

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		log.WithField("path", credentialsPath).Error("firebase credentials file not found")
		return err
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.WithError(err).Error("initializing firebase app")
		return err
	}
	FirebaseApp = app

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		log.WithError(err).Error("initializing firestore client")
		return err
	}
	FirestoreClient = firestoreClient

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.WithError(err).Error("initializing auth client")
		return err
	}
	AuthClient = authClient

	log.Info("firebase initialized")
	return nil
}

// CloseFirebase closes Firebase connections
func CloseFirebase() {
	if FirestoreClient != nil {
		FirestoreClient.Close()
		log.Info("firestore connection closed")
	}
}
