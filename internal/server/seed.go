package server

import (
	"context"
	"log/slog"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

// SeedGame loads the campus zones and story clues if the store holds
// none yet. Idempotent: does nothing once zones exist.
func SeedGame(ctx context.Context, logger *slog.Logger, store Store) error {
	if err := store.SeedZones(ctx, campusZones(), storyClues()); err != nil {
		return err
	}
	logger.Info("zone reference data seeded", "zones", len(campusZones()))
	return nil
}

func campusZones() []geoquest.Zone {
	return []geoquest.Zone{
		{
			ID: 1, Name: "Administrative Office (ADM)",
			Lat: 10.04304061894997, Lng: 76.32450554205566, RadiusMeters: 60,
			UnlockCode: "4417",
			Question:   "What geometric shape is the main entrance circle effectively?",
			Options:    []string{"Circle", "Triangle", "Square", "Hexagon"},
			Answer:     "Circle",
			Clue:       "The heart of the campus power structure. Go to the coordinates near the main entrance circle.",
		},
		{
			ID: 2, Name: "University Library",
			Lat: 10.04466182710918, Lng: 76.3250271941694, RadiusMeters: 60,
			UnlockCode: "8120",
			Question:   "The library stands as a repository of knowledge opposite which major building?",
			Options:    []string{"SMS", "CITTIC", "Amenity", "ADM"},
			Answer:     "SMS",
			Clue:       "A silent guardian of wisdom, standing directly opposite the School of Management Studies.",
		},
		{
			ID: 3, Name: "Butterfly Park",
			Lat: 10.043480971912379, Lng: 76.32533335184156, RadiusMeters: 60,
			UnlockCode: "3965",
			Question:   "This park is located near which scientific department?",
			Options:    []string{"Applied Chemistry", "Physics", "Maths", "Biology"},
			Answer:     "Applied Chemistry",
			Clue:       "Nature's winged beauty thrives here. Seek the green space near the Dept. of Applied Chemistry.",
		},
		{
			ID: 4, Name: "School of Mgmt. Studies (SMS)",
			Lat: 10.043320778723304, Lng: 76.32738279602225, RadiusMeters: 60,
			UnlockCode: "5273",
			Question:   "This building is located next to which major landmark?",
			Options:    []string{"Main Circle", "Library", "Canteen", "Hostel"},
			Answer:     "Main Circle",
			Clue:       "Where future leaders are forged. It stands proud next to the Main Circle.",
		},
		{
			ID: 5, Name: "Amenity Centre",
			Lat: 10.042797743518628, Lng: 76.32852206718607, RadiusMeters: 60,
			UnlockCode: "6034",
			Question:   "The Amenity Centre is located near the shops on which road?",
			Options:    []string{"University Road", "Highway", "Main Ave", "Back Lane"},
			Answer:     "University Road",
			Clue:       "A place for goods and gathering. Find it near the University Road shops.",
		},
		{
			ID: 6, Name: "CITTIC Incubator",
			Lat: 10.044210912345678, Lng: 76.32611409876543, RadiusMeters: 60,
			UnlockCode: "9748",
			Question:   "CITTIC hosts startups working primarily in which field?",
			Options:    []string{"Technology", "Agriculture", "Textiles", "Shipping"},
			Answer:     "Technology",
			Clue:       "Ideas become companies behind these walls. Look for the incubator sign.",
		},
	}
}

func storyClues() []geoquest.Clue {
	return []geoquest.Clue{
		{Number: 1, Text: "Fragment 1: The transmission began at 02:14. Nobody believed the first report.", ImagePath: "/story_clues/clue_1.png"},
		{Number: 2, Text: "Fragment 2: The courier never reached the rendezvous. Their satchel did.", ImagePath: "/story_clues/clue_2.png"},
		{Number: 3, Text: "Fragment 3: Six sites, one cipher. The order was never the same twice.", ImagePath: "/story_clues/clue_3.png"},
		{Number: 4, Text: "Fragment 4: Command confirmed the leak came from inside the perimeter.", ImagePath: "/story_clues/clue_4.png"},
		{Number: 5, Text: "Fragment 5: The extraction window opens only for those holding the key.", ImagePath: "/story_clues/clue_5.png"},
		{Number: 6, Text: "Fragment 6: End of message. Burn after reading.", ImagePath: "/story_clues/clue_6.png"},
	}
}
