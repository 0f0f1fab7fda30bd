package scoring

// Emissions covers regulatory and emissions vocabulary for the shipping industry.
var Emissions = Table{
	Name:            "emissions",
	TitleMultiplier: DefaultTitleMultiplier,
	Prefilter: []string{
		"EU-ETS", "CO2", "greenhouse gas", "emissions", "fueleu", "MRV", "CII", "EEDI",
		"decarbonization", "decarbonisation",
	},
	Weights: []Weight{
		// regulatory
		{"EU-ETS", 15},
		{"ETS", 10},
		{"fueleu", 15},
		{"MRV", 12},
		{"IMO", 10},
		{"CII", 12},
		{"EEDI", 12},
		{"EEXI", 12},

		{"CO2", 5},
		{"emissions", 5},
		{"greenhouse gas", 8},
		{"carbon", 5},
		{"decarbonization", 10},
		{"decarbonisation", 10},
		{"net-zero", 10},
		{"net zero", 10},

		// alternative fuels
		{"methanol", 12},
		{"ammonia", 12},
		{"hydrogen", 10},
		{"LNG", 8},
		{"biofuel", 8},

		{"shipping", 3},
		{"maritime", 3},
		{"vessel", 2},
		{"ship", 2},
		{"fleet", 3},

		{"Maersk", 5},
		{"MSC", 5},
		{"CMA CGM", 5},
		{"EMSA", 8},
	},
}

// Hydrogen covers hydrogen propulsion and related fuel technology.
var Hydrogen = Table{
	Name:            "hydrogen",
	TitleMultiplier: DefaultTitleMultiplier,
	Prefilter: []string{
		"hydrogen", "lh2", "fuel cell", "h2", "green ammonia", "electrolyzer", "fuelcell",
	},
	Weights: []Weight{
		{"hydrogen", 15},
		{"lh2", 20},
		{"liquid hydrogen", 20},
		{"fuel cell", 18},
		{"fuelcell", 18},
		{"h2", 10},
		{"electrolyzer", 15},
		{"electrolysis", 12},
		{"green hydrogen", 18},

		// alternative fuels
		{"ammonia", 12},
		{"green ammonia", 15},
		{"methanol", 8},
		{"e-fuel", 12},
		{"e-methanol", 12},

		{"propulsion", 8},
		{"zero-emission", 12},
		{"zero emission", 12},
		{"carbon-free", 10},
		{"decarbonization", 10},
		{"decarbonisation", 10},

		{"vessel", 3},
		{"ship", 3},
		{"maritime", 5},
		{"shipping", 3},
		{"newbuild", 5},
		{"carrier", 5},

		{"CMB", 8},
		{"Kawasaki", 8},
		{"HyShip", 10},
		{"Norled", 8},
	},
}
