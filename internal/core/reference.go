package core

// Reference values shown by the dashboard.
var (
	referenceRows = []TimeSeriesRow{
		{Year: 2020, DigitalPayments: 17.6, NoteVolume: 1.44, CoinVolume: 0.043},
		{Year: 2021, DigitalPayments: 24.1, NoteVolume: 1.67, CoinVolume: 0.042},
		{Year: 2022, DigitalPayments: 29.5, NoteVolume: 1.84, CoinVolume: 0.043},
		{Year: 2023, DigitalPayments: 32.5, NoteVolume: 1.87, CoinVolume: 0.045},
	}

	// 43 million coins, expressed in billions.
	referenceAverages = []AverageStat{
		{Key: "instruments", Name: "Avg Instruments", Help: "Average number of payment instruments used", Value: 4.5, Unit: UnitBillions, Precision: 2},
		{Key: "channels", Name: "Avg Channels", Help: "Average number of payment channels used", Value: 3.94, Unit: UnitBillions, Precision: 2},
		{Key: "systems", Name: "Avg Systems", Help: "Average number of payment systems used", Value: 17.50, Unit: UnitBillions, Precision: 2},
		{Key: "notes", Name: "Avg Notes", Help: "Average volume of notes in circulation", Value: 1.70, Unit: UnitBillions, Precision: 2},
		{Key: "coins", Name: "Avg Coins", Help: "Average volume of coins in circulation", Value: 0.043, Unit: UnitBillions, Precision: 3},
	}
)

// DefaultDataset returns the built-in 2020-2023 dataset.
func DefaultDataset() Dataset {
	ds, err := NewDataset(referenceRows, referenceAverages)
	if err != nil {
		panic("core: reference dataset is invalid: " + err.Error())
	}
	return ds
}

// DefaultAverages returns a copy of the built-in tile values.
func DefaultAverages() []AverageStat {
	out := make([]AverageStat, len(referenceAverages))
	copy(out, referenceAverages)
	return out
}
