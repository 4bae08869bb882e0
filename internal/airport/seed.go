package airport

import "avroute/internal/model"

// Seed returns the embedded catalog: a set of general aviation airports
// around the UK-to-Riviera touring corridor plus a few off-corridor fields,
// enough for the service to run without a database.
func Seed() []model.Airport {
	return []model.Airport{
		{Ident: "EGTF", Name: "Fairoaks", Country: "GB",
			Point: model.NavPoint{Lat: 51.3481, Lon: -0.5589},
			LongestRunwayM: 810, HasAvgas: true},
		{Ident: "LFAT", Name: "Le Touquet-Paris-Plage", Country: "FR",
			Point: model.NavPoint{Lat: 50.5174, Lon: 1.6206},
			LongestRunwayM: 1850, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},
		{Ident: "LFOP", Name: "Rouen Vallee de Seine", Country: "FR",
			Point: model.NavPoint{Lat: 49.3842, Lon: 1.1748},
			LongestRunwayM: 1700, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},
		{Ident: "LFPN", Name: "Toussus-le-Noble", Country: "FR",
			Point: model.NavPoint{Lat: 48.7517, Lon: 2.1061},
			LongestRunwayM: 1100, HasAvgas: true, HasJetA: true, HasProcedures: true},
		{Ident: "LFLA", Name: "Auxerre Branches", Country: "FR",
			Point: model.NavPoint{Lat: 47.8502, Lon: 3.4971},
			LongestRunwayM: 1660, HasAvgas: true, HasJetA: true, HasProcedures: true},
		{Ident: "LFGF", Name: "Beaune Challanges", Country: "FR",
			Point: model.NavPoint{Lat: 47.0059, Lon: 4.8934},
			LongestRunwayM: 1000, HasAvgas: true},
		{Ident: "LFLY", Name: "Lyon Bron", Country: "FR",
			Point: model.NavPoint{Lat: 45.7272, Lon: 4.9444},
			LongestRunwayM: 1820, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},
		{Ident: "LFMV", Name: "Avignon Provence", Country: "FR",
			Point: model.NavPoint{Lat: 43.9073, Lon: 4.9018},
			LongestRunwayM: 1880, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},
		{Ident: "LFMD", Name: "Cannes Mandelieu", Country: "FR",
			Point: model.NavPoint{Lat: 43.5420, Lon: 6.9535},
			LongestRunwayM: 1610, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},

		// off the main corridor
		{Ident: "EGJJ", Name: "Jersey", Country: "JE",
			Point: model.NavPoint{Lat: 49.2080, Lon: -2.1955},
			LongestRunwayM: 1706, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},
		{Ident: "LFBD", Name: "Bordeaux Merignac", Country: "FR",
			Point: model.NavPoint{Lat: 44.8283, Lon: -0.7156},
			LongestRunwayM: 3100, HasAvgas: true, HasJetA: true, HasProcedures: true, PointOfEntry: true},
		{Ident: "LSGG", Name: "Geneva", Country: "CH",
			Point: model.NavPoint{Lat: 46.2381, Lon: 6.1089},
			LongestRunwayM: 3900, HasJetA: true, HasProcedures: true, PointOfEntry: true},
	}
}
