package demographics

import "powermap/internal/dataset"

// curatedRow is one hand-compiled entry: name plus the five broad-group
// percentages from Census 2021/2022, mapped to 2024 boundaries.
type curatedRow struct {
	name                            string
	white, asian, black, mixed, oth float64
}

// curatedRows covers the constituencies held by current ministers. Where
// exact 2024-boundary data is not published, best-estimate figures from
// the predecessor constituency's census data are used.
var curatedRows = []curatedRow{
	// High diversity (>25% non-White)
	{"Tottenham", 37.1, 9.0, 31.5, 11.2, 11.2},
	{"Birmingham Ladywood", 28.5, 45.8, 14.0, 6.2, 5.5},
	{"Peckham", 33.8, 5.4, 37.7, 12.5, 10.6},
	{"East Ham", 18.4, 51.7, 16.4, 5.2, 8.3},
	{"Feltham and Heston", 39.2, 41.5, 6.8, 6.0, 6.5},
	{"Streatham and Croydon North", 33.5, 7.2, 36.0, 12.0, 11.3},
	{"Birmingham Yardley", 43.2, 35.0, 9.8, 5.5, 6.5},
	{"Birmingham Selly Oak", 53.0, 24.0, 10.5, 6.5, 6.0},
	{"Ealing North", 30.8, 41.0, 11.5, 8.0, 8.7},
	{"Lewisham North", 38.5, 6.0, 31.5, 13.0, 11.0},
	{"Holborn and St Pancras", 48.0, 13.5, 15.0, 10.5, 13.0},
	{"Ilford North", 33.5, 38.0, 13.0, 7.5, 8.0},
	{"Queen's Park and Maida Vale", 44.0, 12.0, 16.0, 11.5, 16.5},
	{"Greenwich and Woolwich", 46.0, 10.5, 22.0, 10.5, 11.0},
	{"Croydon West", 38.5, 13.0, 28.5, 11.0, 9.0},
	{"Leicester West", 40.5, 38.5, 8.0, 6.5, 6.5},
	{"Southampton Test", 64.5, 16.0, 5.5, 6.5, 7.5},
	{"Wolverhampton South East", 56.5, 24.5, 8.0, 5.5, 5.5},
	{"Nottingham North and Kimberley", 78.0, 8.5, 5.0, 5.0, 3.5},
	{"Nottingham South", 63.0, 15.0, 8.5, 7.0, 6.5},
	{"Finchley and Golders Green", 58.5, 14.0, 6.0, 7.0, 14.5},
	{"Hove and Portslade", 82.0, 5.5, 3.5, 5.0, 4.0},
	{"Bristol North West", 82.0, 6.5, 4.0, 4.5, 3.0},
	{"Bristol South", 79.0, 5.5, 5.5, 5.5, 4.5},
	{"Coventry East", 56.0, 24.0, 8.0, 6.0, 6.0},
	{"Glasgow South West", 82.0, 9.5, 3.5, 2.5, 2.5},
	{"Stretford and Urmston", 66.5, 14.0, 7.5, 6.0, 6.0},
	{"Halifax", 68.0, 22.0, 2.5, 4.0, 3.5},
	{"Chipping Barnet", 61.0, 14.5, 8.5, 7.0, 9.0},
	{"Northampton North", 71.5, 12.5, 7.5, 5.0, 3.5},
	{"Vale of Glamorgan", 91.0, 3.5, 1.5, 2.5, 1.5},
	{"Wycombe", 60.0, 25.0, 5.0, 5.0, 5.0},
	{"Brighton Kemptown and Peacehaven", 84.5, 4.5, 3.0, 4.5, 3.5},

	// Medium diversity (10-25% non-White)
	{"Leeds West and Pudsey", 78.0, 11.0, 3.5, 4.0, 3.5},
	{"Leeds South", 64.0, 13.0, 9.0, 6.5, 7.5},
	{"Leeds North West", 73.0, 11.5, 5.0, 5.5, 5.0},
	{"Swindon South", 79.0, 10.0, 3.5, 4.0, 3.5},
	{"Cardiff South and Penarth", 75.0, 10.0, 4.5, 5.5, 5.0},
	{"Cardiff East", 78.0, 9.5, 4.0, 5.0, 3.5},
	{"Cardiff North", 82.0, 8.0, 3.0, 4.5, 2.5},
	{"Swansea West", 84.0, 7.5, 2.5, 3.0, 3.0},
	{"Wigan", 93.0, 2.5, 1.0, 2.0, 1.5},
	{"Edinburgh South", 80.0, 10.0, 3.0, 3.5, 3.5},
	{"North East Derbyshire", 95.0, 2.0, 0.5, 1.5, 1.0},
	{"Reading West and Mid Berkshire", 72.0, 14.0, 4.5, 5.0, 4.5},
	{"Makerfield", 95.5, 1.5, 0.5, 1.5, 1.0},
	{"Lincoln", 89.5, 4.5, 1.5, 2.5, 2.0},
	{"Doncaster North", 94.0, 2.5, 1.0, 1.5, 1.0},

	// Low diversity (<10% non-White)
	{"Pontefract, Castleford and Knottingley", 93.5, 2.5, 1.0, 2.0, 1.0},
	{"Rawmarsh and Conisbrough", 95.0, 2.0, 0.5, 1.5, 1.0},
	{"Houghton and Sunderland South", 96.0, 1.5, 0.5, 1.0, 1.0},
	{"Barnsley North", 96.0, 1.5, 0.5, 1.0, 1.0},
	{"Barnsley South", 95.5, 1.5, 0.5, 1.5, 1.0},
	{"Stalybridge and Hyde", 87.0, 7.0, 1.5, 2.5, 2.0},
	{"Redcar", 96.5, 1.5, 0.5, 1.0, 0.5},
	{"Birkenhead", 92.0, 2.5, 1.5, 2.5, 1.5},
	{"Torfaen", 96.0, 1.5, 0.5, 1.5, 0.5},
	{"Bridgend", 94.5, 2.0, 1.0, 2.0, 0.5},
	{"Dover and Deal", 92.5, 2.5, 1.5, 2.0, 1.5},
	{"Plymouth Sutton and Devonport", 90.5, 3.0, 2.0, 2.5, 2.0},
	{"Pontypridd", 94.5, 2.0, 1.0, 2.0, 0.5},
	{"Rother Valley", 96.0, 1.5, 0.5, 1.5, 0.5},
	{"Chester North and Neston", 93.5, 2.5, 1.0, 2.0, 1.0},
	{"West Lancashire", 95.5, 2.0, 0.5, 1.5, 0.5},
	{"Kingston upon Hull North and Cottingham", 92.5, 3.0, 1.5, 2.0, 1.0},
	{"Kingston upon Hull West and Hessle", 89.5, 4.5, 2.0, 2.5, 1.5},
	{"Rhondda and Ogmore", 96.5, 1.0, 0.5, 1.5, 0.5},
	{"Wallasey", 93.5, 1.5, 1.0, 2.5, 1.5},
	{"Whitehaven and Workington", 97.0, 1.0, 0.5, 1.0, 0.5},
	{"Rutherglen", 90.0, 5.0, 1.5, 2.0, 1.5},
	{"Inverclyde and Renfrewshire West", 95.0, 2.5, 0.5, 1.0, 1.0},
	{"Stockton North", 93.5, 3.0, 1.0, 1.5, 1.0},
	{"East Renfrewshire", 86.0, 8.5, 1.0, 2.5, 2.0},
	{"Wakefield and Rothwell", 90.0, 5.0, 1.5, 2.5, 1.0},
	{"Selby", 95.5, 2.0, 0.5, 1.5, 0.5},
	{"Scunthorpe", 89.5, 5.5, 1.5, 2.0, 1.5},
	{"Wirral West", 93.0, 2.0, 1.0, 2.5, 1.5},
	{"Midlothian", 94.5, 2.5, 0.5, 1.5, 1.0},
	{"Alyn and Deeside", 95.0, 2.0, 0.5, 1.5, 1.0},
	{"Tynemouth", 94.0, 2.5, 1.0, 1.5, 1.0},
	{"Lothian East", 95.5, 2.0, 0.5, 1.0, 1.0},
	{"Bangor Aberconwy", 95.5, 2.0, 0.5, 1.5, 0.5},
	{"Aberafan Maesteg", 96.0, 1.5, 0.5, 1.5, 0.5},
}

// Curated returns the built-in ministerial constituency table.
func Curated() []*dataset.Demographics {
	out := make([]*dataset.Demographics, 0, len(curatedRows))
	for _, r := range curatedRows {
		out = append(out, &dataset.Demographics{
			Name:        r.name,
			WhitePct:    dataset.Float(r.white),
			AsianPct:    dataset.Float(r.asian),
			BlackPct:    dataset.Float(r.black),
			MixedPct:    dataset.Float(r.mixed),
			OtherPct:    dataset.Float(r.oth),
			NonWhitePct: dataset.Float(dataset.Round1(100 - r.white)),
		})
	}
	return out
}
