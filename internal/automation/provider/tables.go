package provider

import "formrunner/internal/domain/entity"

// TorrentPower targets the electricity name-change form. This is the one
// table aimed at a page whose markup we do not control, so it carries the
// full locator cascade: selector lists, label texts and positional
// ordinals.
var TorrentPower = &Provider{
	Key:         "torrent_power",
	DisplayName: "Torrent Power",
	PortalURL:   "https://connect.torrentpower.com/tplcp/application/namechangerequest",
	Fields: []entity.FieldSpec{
		{
			Name:  "city",
			Label: "City",
			Kind:  entity.FieldDropdown,
			Selectors: []string{
				`select[name*="city"]`,
				`select[id*="city"]`,
				`select:first-of-type`,
				`select`,
			},
			LabelTexts: []string{"city", "location", "area"},
		},
		{
			Name:  "service_number",
			Label: "Service Number",
			Kind:  entity.FieldText,
			Selectors: []string{
				`input[name*="service"]`,
				`input[placeholder*="service"]`,
				`input[placeholder*="Service"]`,
				`input[id*="service"]`,
			},
			LabelTexts: []string{"service number", "consumer number", "account"},
			Ordinal:    1,
		},
		{
			Name:  "t_number",
			Label: "Transaction Number (T No)",
			Kind:  entity.FieldText,
			Selectors: []string{
				`input[name*="t_no"], input[name*="tno"], input[id*="t_no"]`,
				`input[placeholder*="T No"], input[placeholder*="T no"], input[placeholder*="transaction"]`,
				`input[name*="transaction"]`,
				`input[name*="reference"]`,
			},
			LabelTexts: []string{"t no", "t number", "transaction no", "transaction number", "reference", "ref no"},
			Ordinal:    2,
			Critical:   true,
		},
		{
			Name:  "mobile",
			Label: "Mobile Number",
			Kind:  entity.FieldText,
			Selectors: []string{
				`input[name*="mobile"]`,
				`input[placeholder*="mobile"]`,
				`input[placeholder*="Mobile"]`,
				`input[type="tel"]`,
			},
			LabelTexts: []string{"mobile", "phone", "contact"},
			Ordinal:    3,
		},
		{
			Name:  "email",
			Label: "Email Address",
			Kind:  entity.FieldText,
			Selectors: []string{
				`input[name*="email"]`,
				`input[placeholder*="email"]`,
				`input[placeholder*="Email"]`,
				`input[type="email"]`,
			},
			LabelTexts: []string{"email", "mail"},
			Ordinal:    4,
		},
	},
	Required:    []string{"city", "service_number", "t_number", "mobile", "email"},
	PhoneFields: []string{"mobile"},
	Defaults:    map[string]string{"city": "Ahmedabad"},
}

// The remaining portals expose stable element ids, so their tables lean
// on exact lookups with selector fallbacks.

var AdaniGas = &Provider{
	Key:         "adani_gas",
	DisplayName: "Adani Total Gas",
	PortalURL:   "https://www.adanigas.com/customer-services/name-transfer",
	Fields: []entity.FieldSpec{
		{Name: "city", Label: "City", Kind: entity.FieldDropdown, ExactID: "city",
			Selectors: []string{`select[name*="city"]`}, LabelTexts: []string{"city"}},
		{Name: "consumer_number", Label: "Consumer Number", Kind: entity.FieldText, ExactID: "consumerNumber",
			Selectors: []string{`input[name*="consumer"]`}, LabelTexts: []string{"consumer number"}, Ordinal: 1},
		{Name: "bp_number", Label: "BP Number", Kind: entity.FieldText, ExactID: "bpNumber",
			Selectors: []string{`input[name*="bp"]`}, LabelTexts: []string{"bp number", "business partner"}, Ordinal: 2},
		{Name: "applicant_name", Label: "Applicant Name", Kind: entity.FieldText, ExactID: "applicantName",
			Selectors: []string{`input[name*="name"]`}, LabelTexts: []string{"applicant name", "full name"}, Ordinal: 3},
		{Name: "mobile", Label: "Mobile Number", Kind: entity.FieldText, ExactID: "mobile",
			Selectors: []string{`input[type="tel"]`, `input[name*="mobile"]`}, LabelTexts: []string{"mobile", "phone"}, Ordinal: 4},
		{Name: "email", Label: "Email Address", Kind: entity.FieldText, ExactID: "email",
			Selectors: []string{`input[type="email"]`, `input[name*="email"]`}, LabelTexts: []string{"email"}, Ordinal: 5},
		{Name: "application_type", Label: "Application Type", Kind: entity.FieldDropdown, ExactID: "applicationType",
			Selectors: []string{`select[name*="type"]`}, LabelTexts: []string{"application type"}},
	},
	Required:    []string{"consumer_number", "applicant_name", "mobile", "email"},
	PhoneFields: []string{"mobile"},
	Defaults:    map[string]string{"application_type": "name_change"},
}

var AMCWater = &Provider{
	Key:         "amc_water",
	DisplayName: "AMC Water Supply",
	PortalURL:   "https://ahmedabadcity.gov.in/portal/web/amc/water-connection",
	Fields: []entity.FieldSpec{
		{Name: "zone", Label: "Zone", Kind: entity.FieldDropdown, ExactID: "zone",
			Selectors: []string{`select[name*="zone"]`}, LabelTexts: []string{"zone", "ward"}},
		{Name: "connection_id", Label: "Connection ID", Kind: entity.FieldText, ExactID: "connectionId",
			Selectors: []string{`input[name*="connection"]`}, LabelTexts: []string{"connection id", "connection number"}, Ordinal: 1},
		{Name: "applicant_name", Label: "Applicant Name", Kind: entity.FieldText, ExactID: "applicantName",
			Selectors: []string{`input[name*="name"]`}, LabelTexts: []string{"applicant name", "full name"}, Ordinal: 2},
		{Name: "mobile", Label: "Mobile Number", Kind: entity.FieldText, ExactID: "mobile",
			Selectors: []string{`input[type="tel"]`, `input[name*="mobile"]`}, LabelTexts: []string{"mobile", "phone"}, Ordinal: 3},
		{Name: "email", Label: "Email Address", Kind: entity.FieldText, ExactID: "email",
			Selectors: []string{`input[type="email"]`, `input[name*="email"]`}, LabelTexts: []string{"email"}, Ordinal: 4},
		{Name: "application_type", Label: "Application Type", Kind: entity.FieldDropdown, ExactID: "applicationType",
			Selectors: []string{`select[name*="type"]`}, LabelTexts: []string{"application type"}},
	},
	Required:    []string{"connection_id", "applicant_name", "mobile", "email"},
	PhoneFields: []string{"mobile"},
	Defaults:    map[string]string{"zone": "Central Zone", "application_type": "name_change"},
}

var AnyRoRGujarat = &Provider{
	Key:         "anyror_gujarat",
	DisplayName: "AnyRoR Gujarat Land Records",
	PortalURL:   "https://anyror.gujarat.gov.in/LandRecordRural.aspx",
	Fields: []entity.FieldSpec{
		{Name: "district", Label: "District", Kind: entity.FieldDropdown, ExactID: "district",
			Selectors: []string{`select[name*="district"]`}, LabelTexts: []string{"district"}},
		{Name: "survey_number", Label: "Survey Number", Kind: entity.FieldText, ExactID: "surveyNumber",
			Selectors: []string{`input[name*="survey"]`}, LabelTexts: []string{"survey number", "survey no"}, Ordinal: 1},
		{Name: "property_id", Label: "Property ID", Kind: entity.FieldText, ExactID: "propertyId",
			Selectors: []string{`input[name*="property"]`, `input[name*="subdivision"]`}, LabelTexts: []string{"property id", "subdivision"}, Ordinal: 2},
		{Name: "applicant_name", Label: "Applicant Name", Kind: entity.FieldText, ExactID: "applicantName",
			Selectors: []string{`input[name*="name"]`}, LabelTexts: []string{"applicant name", "full name"}, Ordinal: 3},
		{Name: "mobile", Label: "Mobile Number", Kind: entity.FieldText, ExactID: "mobile",
			Selectors: []string{`input[type="tel"]`, `input[name*="mobile"]`}, LabelTexts: []string{"mobile", "phone"}, Ordinal: 4},
		{Name: "email", Label: "Email Address", Kind: entity.FieldText, ExactID: "email",
			Selectors: []string{`input[type="email"]`, `input[name*="email"]`}, LabelTexts: []string{"email"}, Ordinal: 5},
		{Name: "application_type", Label: "Application Type", Kind: entity.FieldDropdown, ExactID: "applicationType",
			Selectors: []string{`select[name*="type"]`}, LabelTexts: []string{"application type"}},
	},
	Required:    []string{"survey_number", "applicant_name", "mobile", "email"},
	PhoneFields: []string{"mobile"},
	Defaults:    map[string]string{"application_type": "name_change"},
}
