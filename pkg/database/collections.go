package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createStopsIndexes()
	createScheduleIndexes()
}

func createStopsIndexes() {
	stopsCollection := GetCollection("stops")
	stopsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2d"}},
		},
		{
			Keys: bson.D{{Key: "associations.associatedidentifier", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := stopsCollection.Indexes().CreateMany(context.Background(), stopsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createScheduleIndexes() {
	routesCollection := GetCollection("routes")
	routesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "linename", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := routesCollection.Indexes().CreateMany(context.Background(), routesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	tripsCollection := GetCollection("trips")
	tripsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "rotationref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "departuretime", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = tripsCollection.Indexes().CreateMany(context.Background(), tripsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	rotationsCollection := GetCollection("vehicle_rotations")
	rotationsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "operatingday", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = rotationsCollection.Indexes().CreateMany(context.Background(), rotationsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
