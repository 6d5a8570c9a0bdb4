package dataimporter

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/netzplan/netzplan/pkg/database"
)

// Emit upserts the converted entities into Mongo, keyed by their
// primary identifiers so reruns of the same document are idempotent.
func Emit(ctx context.Context, entities *Entities) error {
	if err := bulkUpsert(ctx, "stops", stopModels(entities)); err != nil {
		return err
	}
	if err := bulkUpsert(ctx, "routes", routeModels(entities)); err != nil {
		return err
	}
	if err := bulkUpsert(ctx, "trips", tripModels(entities)); err != nil {
		return err
	}
	if err := bulkUpsert(ctx, "vehicle_rotations", rotationModels(entities)); err != nil {
		return err
	}

	log.Info().
		Int("stops", len(entities.Stops)).
		Int("routes", len(entities.Routes)).
		Int("trips", len(entities.Trips)).
		Int("rotations", len(entities.Rotations)).
		Msg("Imported into Mongo")

	return nil
}

func bulkUpsert(ctx context.Context, collectionName string, operations []mongo.WriteModel) error {
	if len(operations) == 0 {
		return nil
	}

	collection := database.GetCollection(collectionName)
	_, err := collection.BulkWrite(ctx, operations, &options.BulkWriteOptions{})
	return err
}

func upsertModel(primaryIdentifier string, entity interface{}) mongo.WriteModel {
	bsonRep, _ := bson.Marshal(bson.M{"$set": entity})

	updateModel := mongo.NewUpdateOneModel()
	updateModel.SetFilter(bson.M{"primaryidentifier": primaryIdentifier})
	updateModel.SetUpdate(bsonRep)
	updateModel.SetUpsert(true)

	return updateModel
}

func stopModels(entities *Entities) []mongo.WriteModel {
	operations := make([]mongo.WriteModel, 0, len(entities.Stops))
	for _, stop := range entities.Stops {
		operations = append(operations, upsertModel(stop.PrimaryIdentifier, stop))
	}
	return operations
}

func routeModels(entities *Entities) []mongo.WriteModel {
	operations := make([]mongo.WriteModel, 0, len(entities.Routes))
	for _, route := range entities.Routes {
		operations = append(operations, upsertModel(route.PrimaryIdentifier, route))
	}
	return operations
}

func tripModels(entities *Entities) []mongo.WriteModel {
	operations := make([]mongo.WriteModel, 0, len(entities.Trips))
	for _, trip := range entities.Trips {
		operations = append(operations, upsertModel(trip.PrimaryIdentifier, trip))
	}
	return operations
}

func rotationModels(entities *Entities) []mongo.WriteModel {
	operations := make([]mongo.WriteModel, 0, len(entities.Rotations))
	for _, rotation := range entities.Rotations {
		operations = append(operations, upsertModel(rotation.PrimaryIdentifier, rotation))
	}
	return operations
}
