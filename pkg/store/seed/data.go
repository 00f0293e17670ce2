package seed

// Stories are the building levels, top floor first.
var Stories = []Story{
	{ID: 1, Code: "2OG", Name: "2. Obergeschoss", FloorLevel: 2, Description: "Zweites Obergeschoss"},
	{ID: 2, Code: "1OG", Name: "1. Obergeschoss", FloorLevel: 1, Description: "Erstes Obergeschoss"},
	{ID: 3, Code: "EG", Name: "Erdgeschoss", FloorLevel: 0, Description: "Erdgeschoss/Parterre"},
	{ID: 4, Code: "1UG", Name: "1. Untergeschoss", FloorLevel: -1, Description: "Erstes Untergeschoss"},
}

var Elements = []Element{
	{ID: 1, Code: "BM001", Name: "Brandmelder", Category: "Brandschutz", Unit: "Stück", Description: "Rauchmelder für Brandschutz"},
	{ID: 2, Code: "BM002", Name: "Brandmelder Hitze", Category: "Brandschutz", Unit: "Stück", Description: "Hitzemelder für Küchen/Keller"},
	{ID: 3, Code: "FLL001", Name: "Fluchtleuchte", Category: "Brandschutz", Unit: "Stück", Description: "Notausgangsbeleuchtung"},
	{ID: 4, Code: "FE001", Name: "Feuerlöscher 6kg", Category: "Brandschutz", Unit: "Stück", Description: "Pulverlöscher 6kg"},
	{ID: 5, Code: "FE002", Name: "Feuerlöscher 12kg", Category: "Brandschutz", Unit: "Stück", Description: "Pulverlöscher 12kg"},
	{ID: 6, Code: "T001", Name: "Türe Typ 1", Category: "Türen", Unit: "Stück", Description: "Standard Innentür 80cm"},
	{ID: 7, Code: "T002", Name: "Türe Typ 2", Category: "Türen", Unit: "Stück", Description: "Standard Innentür 90cm"},
	{ID: 8, Code: "T003", Name: "Türe Typ 3", Category: "Türen", Unit: "Stück", Description: "Eingangstür Holz"},
	{ID: 9, Code: "T004", Name: "Türe Typ 4", Category: "Türen", Unit: "Stück", Description: "Sicherheitstür Metall"},
	{ID: 10, Code: "T005", Name: "Schiebetür", Category: "Türen", Unit: "Stück", Description: "Schiebetür für Terrasse"},
	{ID: 11, Code: "TZ001", Name: "Türzarge Holz", Category: "Türen", Unit: "Stück", Description: "Holztürzarge standard"},
	{ID: 12, Code: "TZ002", Name: "Türzarge Metall", Category: "Türen", Unit: "Stück", Description: "Metalltürzarge verstärkt"},
	{ID: 13, Code: "UKV001", Name: "UKV Dose", Category: "Elektro", Unit: "Stück", Description: "Unterhaltung/Kommunikation/Versorgung Dose"},
	{ID: 14, Code: "LAN001", Name: "LAN Dose", Category: "Elektro", Unit: "Stück", Description: "Netzwerkdose CAT6"},
	{ID: 15, Code: "TEL001", Name: "Telefondose", Category: "Elektro", Unit: "Stück", Description: "Telefonanschluss"},
	{ID: 16, Code: "SAT001", Name: "SAT Dose", Category: "Elektro", Unit: "Stück", Description: "Satellitenanschluss"},
	{ID: 17, Code: "SD001", Name: "Steckdose Standard", Category: "Elektro", Unit: "Stück", Description: "Schuko Steckdose 230V"},
	{ID: 18, Code: "SD002", Name: "Steckdose Feuchtraum", Category: "Elektro", Unit: "Stück", Description: "IP65 Steckdose"},
	{ID: 19, Code: "LS001", Name: "Lichtschalter", Category: "Elektro", Unit: "Stück", Description: "Wechselschalter"},
	{ID: 20, Code: "LS002", Name: "Dimmer", Category: "Elektro", Unit: "Stück", Description: "Dimmer für LED"},
	{ID: 21, Code: "LS003", Name: "Bewegungsmelder", Category: "Elektro", Unit: "Stück", Description: "PIR Bewegungsmelder"},
	{ID: 22, Code: "UV001", Name: "Unterverteilung", Category: "Elektro", Unit: "Stück", Description: "Sicherungskasten 12 Module"},
	{ID: 23, Code: "LED001", Name: "LED Deckenleuchte", Category: "Beleuchtung", Unit: "Stück", Description: "LED Deckenleuchte 18W"},
	{ID: 24, Code: "LED002", Name: "LED Spots", Category: "Beleuchtung", Unit: "Stück", Description: "Einbauspots 7W"},
	{ID: 25, Code: "LED003", Name: "LED Streifen", Category: "Beleuchtung", Unit: "Meter", Description: "LED Strip 24V"},
	{ID: 26, Code: "AUL001", Name: "Außenleuchte", Category: "Beleuchtung", Unit: "Stück", Description: "Wandleuchte außen"},
	{ID: 27, Code: "HK001", Name: "Heizkörper 600x800", Category: "Heizung", Unit: "Stück", Description: "Plattenheizkörper"},
	{ID: 28, Code: "HK002", Name: "Heizkörper 600x1200", Category: "Heizung", Unit: "Stück", Description: "Plattenheizkörper groß"},
	{ID: 29, Code: "HKV001", Name: "Heizkörperventil", Category: "Heizung", Unit: "Stück", Description: "Thermostatventil"},
	{ID: 30, Code: "FBH001", Name: "Fußbodenheizung", Category: "Heizung", Unit: "qm", Description: "Warmwasser Fußbodenheizung"},
	{ID: 31, Code: "LUF001", Name: "Lüftungsanlage", Category: "Lüftung", Unit: "Stück", Description: "Zentrale Lüftungsanlage"},
	{ID: 32, Code: "LUG001", Name: "Lüftungsgitter", Category: "Lüftung", Unit: "Stück", Description: "Zuluftgitter"},
	{ID: 33, Code: "LUA001", Name: "Lüftungsauslass", Category: "Lüftung", Unit: "Stück", Description: "Abluftauslass"},
	{ID: 34, Code: "WC001", Name: "WC Keramik", Category: "Sanitär", Unit: "Stück", Description: "Wandhängendes WC"},
	{ID: 35, Code: "WB001", Name: "Waschbecken", Category: "Sanitär", Unit: "Stück", Description: "Keramikwaschbecken 60cm"},
	{ID: 36, Code: "DU001", Name: "Dusche", Category: "Sanitär", Unit: "Stück", Description: "Duschtasse 90x90cm"},
	{ID: 37, Code: "BW001", Name: "Badewanne", Category: "Sanitär", Unit: "Stück", Description: "Acryl Badewanne 170cm"},
	{ID: 38, Code: "ARM001", Name: "Armatur WC", Category: "Sanitär", Unit: "Stück", Description: "WC Spülarmatur"},
	{ID: 39, Code: "ARM002", Name: "Armatur Waschbecken", Category: "Sanitär", Unit: "Stück", Description: "Einhebelmischer"},
	{ID: 40, Code: "ARM003", Name: "Armatur Dusche", Category: "Sanitär", Unit: "Stück", Description: "Duscharmatur"},
	{ID: 41, Code: "F001", Name: "Fenster 120x100", Category: "Fenster", Unit: "Stück", Description: "Kunststofffenster 3-fach"},
	{ID: 42, Code: "F002", Name: "Fenster 140x120", Category: "Fenster", Unit: "Stück", Description: "Kunststofffenster groß"},
	{ID: 43, Code: "F003", Name: "Dachfenster", Category: "Fenster", Unit: "Stück", Description: "Velux Dachfenster"},
	{ID: 44, Code: "FB001", Name: "Fensterbank innen", Category: "Fenster", Unit: "Stück", Description: "Marmor Fensterbank"},
	{ID: 45, Code: "FB002", Name: "Fensterbank außen", Category: "Fenster", Unit: "Stück", Description: "Blech Fensterbank"},
	{ID: 46, Code: "RO001", Name: "Rolladen", Category: "Fenster", Unit: "Stück", Description: "Elektrischer Rolladen"},
	{ID: 47, Code: "PF001", Name: "Parkett Eiche", Category: "Bodenbelag", Unit: "qm", Description: "Eiche Massivparkett"},
	{ID: 48, Code: "FLT001", Name: "Fliesen 60x60", Category: "Bodenbelag", Unit: "qm", Description: "Feinsteinzeug Fliesen"},
	{ID: 49, Code: "FLT002", Name: "Fliesen 30x60", Category: "Bodenbelag", Unit: "qm", Description: "Wandfliesen Bad"},
	{ID: 50, Code: "LM001", Name: "Laminat", Category: "Bodenbelag", Unit: "qm", Description: "Laminat Eiche Optik"},
	{ID: 51, Code: "TE001", Name: "Teppich", Category: "Bodenbelag", Unit: "qm", Description: "Teppichboden Büro"},
	{ID: 52, Code: "DA001", Name: "Dämmung Außenwand", Category: "Dämmung", Unit: "qm", Description: "Mineralwolle 16cm"},
	{ID: 53, Code: "DA002", Name: "Dämmung Dach", Category: "Dämmung", Unit: "qm", Description: "Steinwolle 20cm"},
	{ID: 54, Code: "DA003", Name: "Trittschalldämmung", Category: "Dämmung", Unit: "qm", Description: "PE Schaum 5mm"},
	{ID: 55, Code: "BR001", Name: "Briefkasten", Category: "Sonstiges", Unit: "Stück", Description: "Edelstahl Briefkasten"},
	{ID: 56, Code: "KL001", Name: "Klingel", Category: "Sonstiges", Unit: "Stück", Description: "Video Türklingel"},
	{ID: 57, Code: "GA001", Name: "Garagentor", Category: "Sonstiges", Unit: "Stück", Description: "Sektionaltor elektrisch"},
	{ID: 58, Code: "ZA001", Name: "Zaun", Category: "Sonstiges", Unit: "Meter", Description: "Doppelstabmattenzaun"},
	{ID: 59, Code: "TR001", Name: "Treppe Holz", Category: "Sonstiges", Unit: "Stück", Description: "Holztreppe gedrechselt"},
}

// placements lists quantities per story, keyed by codes.
var placements = []placement{
	{"2OG", "BM001", 6, "Brandmelder in allen Räumen"},
	{"2OG", "T001", 4, "Innentüren Schlafzimmer"},
	{"2OG", "T002", 2, "Innentüren Bad/WC"},
	{"2OG", "UKV001", 8, "TV/Internet Anschlüsse"},
	{"2OG", "LAN001", 6, "Netzwerkdosen"},
	{"2OG", "SD001", 20, "Standard Steckdosen"},
	{"2OG", "LS001", 12, "Lichtschalter"},
	{"2OG", "LED001", 8, "Deckenleuchten"},
	{"2OG", "LED002", 16, "LED Spots"},
	{"2OG", "HK001", 4, "Heizkörper mittel"},
	{"2OG", "HK002", 2, "Heizkörper groß"},
	{"2OG", "F001", 6, "Fenster standard"},
	{"2OG", "F002", 2, "Fenster groß"},
	{"2OG", "RO001", 8, "Rolladen"},
	{"2OG", "WC001", 2, "WCs"},
	{"2OG", "WB001", 2, "Waschbecken"},
	{"2OG", "DU001", 1, "Dusche"},
	{"2OG", "PF001", 80, "Parkett Wohnbereich"},
	{"2OG", "FLT001", 25, "Fliesen Nassbereiche"},

	{"1OG", "BM001", 8, "Brandmelder alle Räume"},
	{"1OG", "T001", 5, "Innentüren standard"},
	{"1OG", "T002", 3, "Innentüren breit"},
	{"1OG", "UKV001", 10, "TV/Internet"},
	{"1OG", "LAN001", 8, "Netzwerk"},
	{"1OG", "SD001", 25, "Steckdosen"},
	{"1OG", "LS001", 15, "Schalter"},
	{"1OG", "LS002", 3, "Dimmer Wohnbereich"},
	{"1OG", "LED001", 10, "Deckenleuchten"},
	{"1OG", "LED002", 20, "Spots"},
	{"1OG", "HK001", 6, "Heizkörper"},
	{"1OG", "HK002", 2, "Heizkörper groß"},
	{"1OG", "F001", 8, "Fenster"},
	{"1OG", "F002", 3, "Fenster groß"},
	{"1OG", "RO001", 11, "Rolladen"},
	{"1OG", "WC001", 2, "WCs"},
	{"1OG", "WB001", 3, "Waschbecken"},
	{"1OG", "DU001", 1, "Dusche"},
	{"1OG", "BW001", 1, "Badewanne"},
	{"1OG", "PF001", 100, "Parkett"},
	{"1OG", "FLT001", 30, "Fliesen"},

	{"EG", "BM001", 10, "Brandmelder"},
	{"EG", "FLL001", 4, "Fluchtleuchten"},
	{"EG", "FE001", 2, "Feuerlöscher"},
	{"EG", "T001", 6, "Innentüren"},
	{"EG", "T002", 2, "Innentüren breit"},
	{"EG", "T003", 1, "Eingangstür"},
	{"EG", "T005", 2, "Schiebetür Terrasse"},
	{"EG", "UKV001", 12, "UKV Dosen"},
	{"EG", "LAN001", 10, "LAN Dosen"},
	{"EG", "TEL001", 3, "Telefon"},
	{"EG", "SD001", 30, "Steckdosen"},
	{"EG", "SD002", 4, "Feuchtraum Steckdosen"},
	{"EG", "LS001", 18, "Lichtschalter"},
	{"EG", "LS002", 5, "Dimmer"},
	{"EG", "LS003", 2, "Bewegungsmelder"},
	{"EG", "LED001", 12, "Deckenleuchten"},
	{"EG", "LED002", 25, "LED Spots"},
	{"EG", "AUL001", 4, "Außenleuchten"},
	{"EG", "HK001", 5, "Heizkörper"},
	{"EG", "HK002", 3, "Heizkörper groß"},
	{"EG", "FBH001", 60, "Fußbodenheizung Küche/Bad"},
	{"EG", "F001", 10, "Fenster"},
	{"EG", "F002", 4, "Fenster groß"},
	{"EG", "RO001", 14, "Rolladen"},
	{"EG", "WC001", 2, "Gäste-WC + Bad"},
	{"EG", "WB001", 2, "Waschbecken"},
	{"EG", "DU001", 1, "Dusche"},
	{"EG", "PF001", 120, "Parkett Wohnbereich"},
	{"EG", "FLT001", 40, "Fliesen Küche/Bad"},
	{"EG", "BR001", 1, "Briefkasten"},
	{"EG", "KL001", 1, "Türklingel"},

	{"1UG", "BM002", 4, "Hitzemelder Keller"},
	{"1UG", "FLL001", 6, "Fluchtleuchten"},
	{"1UG", "FE001", 1, "Feuerlöscher"},
	{"1UG", "FE002", 1, "Feuerlöscher groß"},
	{"1UG", "T001", 3, "Innentüren"},
	{"1UG", "T004", 1, "Sicherheitstür"},
	{"1UG", "LAN001", 4, "Netzwerk Technikraum"},
	{"1UG", "SD001", 15, "Steckdosen"},
	{"1UG", "SD002", 8, "Feuchtraum Steckdosen"},
	{"1UG", "LS001", 8, "Lichtschalter"},
	{"1UG", "LS003", 4, "Bewegungsmelder"},
	{"1UG", "UV001", 1, "Hauptverteiler"},
	{"1UG", "LED001", 8, "Kellerbeleuchtung"},
	{"1UG", "AUL001", 2, "Außenleuchten"},
	{"1UG", "HK001", 2, "Heizkörper Hobbyraum"},
	{"1UG", "LUF001", 1, "Lüftungsanlage"},
	{"1UG", "LUG001", 6, "Lüftungsgitter"},
	{"1UG", "LUA001", 6, "Lüftungsauslässe"},
	{"1UG", "F001", 3, "Kellerfenster"},
	{"1UG", "WC001", 1, "Keller-WC"},
	{"1UG", "WB001", 1, "Waschbecken"},
	{"1UG", "FLT001", 60, "Fliesen Keller"},
	{"1UG", "TE001", 20, "Teppich Hobbyraum"},
	{"1UG", "GA001", 1, "Garagentor"},
	{"1UG", "DA001", 200, "Außenwanddämmung"},
	{"1UG", "DA003", 150, "Trittschalldämmung"},
}
