package laws

import "github.com/sunolegal/backend/pkg/models"

// SampleLawyers returns the development marketplace dataset.
func SampleLawyers() []models.Lawyer {
	return []models.Lawyer{
		{
			Name:           "Adv. Neha Sharma",
			BarCouncilID:   "DL/12345/2015",
			Specialization: []string{"Family Law", "Matrimonial"},
			Languages:      []string{"Hindi", "English"},
			City:           "Delhi",
			State:          "Delhi",
			Experience:     10,
			Price:          500,
			Rating:         4.9,
			Reviews:        210,
			Bio:            "Experienced family law attorney specializing in divorce and custody cases.",
			Verified:       true,
		},
		{
			Name:           "Adv. Vinayak Verma",
			BarCouncilID:   "DL/23456/2013",
			Specialization: []string{"Corporate Law", "Contracts"},
			Languages:      []string{"Hindi", "English"},
			City:           "Mumbai",
			State:          "Maharashtra",
			Experience:     12,
			Price:          800,
			Rating:         4.8,
			Reviews:        180,
			Bio:            "Corporate law expert with focus on business contracts and compliance.",
			Verified:       true,
		},
		{
			Name:           "Adv. Anil Kapoor",
			BarCouncilID:   "MH/34567/2011",
			Specialization: []string{"Property Law", "Civil Law"},
			Languages:      []string{"Hindi", "English", "Marathi"},
			City:           "Pune",
			State:          "Maharashtra",
			Experience:     15,
			Price:          1000,
			Rating:         4.6,
			Reviews:        95,
			Bio:            "Property law specialist with extensive experience in civil litigation.",
			Verified:       true,
		},
		{
			Name:           "Adv. Priya Menon",
			BarCouncilID:   "KA/45678/2016",
			Specialization: []string{"Criminal Law"},
			Languages:      []string{"English", "Hindi", "Kannada"},
			City:           "Bangalore",
			State:          "Karnataka",
			Experience:     8,
			Price:          600,
			Rating:         4.7,
			Reviews:        150,
			Bio:            "Criminal defense lawyer committed to protecting client rights.",
			Verified:       true,
		},
	}
}

// SampleLaws returns the development directory dataset.
func SampleLaws() []models.Law {
	return []models.Law{
		{
			Title:       "Consumer Protection Act, 2019",
			Category:    "Consumer Law",
			State:       "All India",
			Type:        "act",
			Description: "Protects consumer rights against unfair trade practices. Provides for consumer tribunals and e-commerce regulations.",
			Eligibility: "All consumers who purchase goods or services",
			HowToApply:  "File complaint with District/State/National Consumer Commission",
			RequiredDocs: []string{
				"Purchase receipt", "Written complaint", "ID proof",
			},
			KeyPoints: []string{
				"Right to safety",
				"Right to information",
				"Right to choose",
				"Right to be heard",
				"Right to seek redressal",
			},
		},
		{
			Title:       "Right to Information (RTI) Act, 2005",
			Category:    "Citizen Rights",
			State:       "All India",
			Type:        "act",
			Description: "Empowers citizens to seek information from government bodies, ensuring accountability in public services.",
			Eligibility: "All Indian citizens",
			HowToApply:  "Submit RTI application to concerned Public Information Officer (PIO)",
			RequiredDocs: []string{
				"RTI application form", "Application fee (₹10)",
			},
			KeyPoints: []string{
				"Get information within 30 days",
				"First appeal within 30 days",
				"Second appeal to Information Commission",
			},
		},
		{
			Title:       "PM Awas Yojana (Housing for All)",
			Category:    "Housing",
			State:       "All India",
			Type:        "scheme",
			Description: "Government scheme providing affordable housing to urban and rural poor through subsidies and financial assistance.",
			Eligibility: "EWS/LIG families with annual income up to ₹6 lakh (urban)",
			HowToApply:  "Apply online through PM Awas Yojana portal or visit nearest CSC center",
			RequiredDocs: []string{
				"Aadhaar card", "Income certificate", "Property documents", "Bank account details",
			},
			KeyPoints: []string{
				"Subsidy up to ₹2.67 lakh",
				"Interest rate subsidy on home loans",
				"No ownership of pucca house required",
			},
		},
		{
			Title:       "Tenancy Laws in India",
			Category:    "Tenant Rights",
			State:       "All India",
			Type:        "info",
			Description: "Rights and responsibilities of tenants under state Rent Control Acts and the Model Tenancy Act, 2021.",
			Eligibility: "All tenants under rental agreements",
			HowToApply:  "Register rent agreement; approach Rent Control Court for disputes",
			RequiredDocs: []string{
				"Rent agreement", "Rent receipts", "ID proof",
			},
			KeyPoints: []string{
				"Fair rent assessment",
				"Protection from unlawful eviction",
				"Security deposit (max 2-3 months rent)",
				"Notice period requirements",
			},
		},
	}
}
