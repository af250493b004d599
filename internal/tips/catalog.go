package tips

// CatalogEntry is a canned health tip for a gestational week.
type CatalogEntry struct {
	Title   string
	Content string
}

var weeklyTips = map[int]CatalogEntry{
	// First trimester (weeks 1-12)
	1: {
		Title:   "Welcome to Your Pregnancy Journey",
		Content: "Take folic acid supplements, avoid alcohol and smoking, and schedule your first prenatal appointment. Start tracking your symptoms and eat regular, balanced meals.",
	},
	2: {
		Title:   "Early Pregnancy Nutrition",
		Content: "Focus on foods rich in folic acid like leafy greens, citrus fruits, and fortified cereals. Stay hydrated and eat small, frequent meals to combat nausea.",
	},
	3: {
		Title:   "Managing Morning Sickness",
		Content: "Try eating ginger, keeping crackers by your bedside, and avoiding strong smells. Eat small meals throughout the day and stay hydrated with clear fluids.",
	},
	4: {
		Title:   "First Prenatal Visit Preparation",
		Content: "Prepare questions for your doctor, bring your medical history, and discuss any medications you're taking. This is when you'll likely hear your baby's heartbeat for the first time.",
	},
	5: {
		Title:   "Hormone Changes and Your Body",
		Content: "Mood swings, breast tenderness, and fatigue are normal. Get plenty of rest, maintain a regular sleep schedule, and don't hesitate to ask for support.",
	},
	6: {
		Title:   "Safe Exercise During Early Pregnancy",
		Content: "Light exercises like walking, swimming, and prenatal yoga are beneficial. Avoid contact sports and activities with fall risks. Always consult your doctor before starting new exercises.",
	},
	8: {
		Title:   "Prenatal Vitamins Importance",
		Content: "Continue taking prenatal vitamins with folic acid, iron, and calcium. These support your baby's neural tube development and prevent birth defects.",
	},
	10: {
		Title:   "Managing Pregnancy Fatigue",
		Content: "Rest when you can, maintain a healthy diet, and don't overexert yourself. Fatigue is your body's way of telling you to slow down and nurture your growing baby.",
	},
	12: {
		Title:   "End of First Trimester",
		Content: "Congratulations on reaching 12 weeks! Morning sickness may start to ease, and your energy levels might improve. Continue regular prenatal care.",
	},

	// Second trimester (weeks 13-27)
	14: {
		Title:   "Second Trimester Energy Boost",
		Content: "Many women feel more energetic now. This is a great time to prepare the nursery, take childbirth classes, and enjoy your pregnancy glow.",
	},
	16: {
		Title:   "Feeling Baby's First Movements",
		Content: "You might start feeling gentle flutters or bubbles. These movements will become stronger over time. Track your baby's activity patterns.",
	},
	18: {
		Title:   "Anatomy Scan Preparation",
		Content: "Around this time, you'll have an anatomy scan to check your baby's development. This is often when you can learn your baby's sex if you choose.",
	},
	20: {
		Title:   "Halfway Point Celebration",
		Content: "You're halfway through your pregnancy! Focus on a balanced diet with extra protein and calcium. Your baby is now about the size of a banana.",
	},
	22: {
		Title:   "Skin and Hair Changes",
		Content: "Pregnancy hormones may cause skin darkening or hair changes. Use gentle, fragrance-free products and always wear sunscreen when outdoors.",
	},
	24: {
		Title:   "Viability Milestone",
		Content: "Your baby has reached an important milestone! Continue regular prenatal visits and monitor your baby's movements. Start thinking about birth preferences.",
	},
	26: {
		Title:   "Preparing for Third Trimester",
		Content: "Begin thinking about your birth plan, tour the maternity ward, and consider taking breastfeeding classes. Monitor for signs of preterm labor.",
	},

	// Third trimester (weeks 28-42)
	28: {
		Title:   "Welcome to Third Trimester",
		Content: "You're in the final stretch! Visits become more frequent now. Watch for signs of preeclampsia: severe headaches, vision changes, or sudden swelling.",
	},
	30: {
		Title:   "Baby's Rapid Growth",
		Content: "Your baby is gaining weight rapidly. You might experience shortness of breath as your baby grows. Practice relaxation techniques and prenatal breathing exercises.",
	},
	32: {
		Title:   "Getting Ready for Baby",
		Content: "Prepare your hospital bag, install the car seat, and finalize your birth plan. Start practicing perineal massage to help prepare for delivery.",
	},
	34: {
		Title:   "Monitoring Baby's Movements",
		Content: "Pay attention to your baby's movement patterns. You should feel at least 10 movements in 2 hours. Contact your healthcare provider if movements decrease significantly.",
	},
	36: {
		Title:   "Baby is Considered Full-Term Soon",
		Content: "Your baby's lungs are maturing. Practice your breathing techniques, finish any last-minute preparations, and rest as much as possible.",
	},
	37: {
		Title:   "Full-Term Pregnancy",
		Content: "Your baby is now considered full-term! Labor could start any time. Know the signs of labor and when to contact your healthcare provider.",
	},
	38: {
		Title:   "Final Preparations",
		Content: "Double-check your hospital bag, confirm your birth plan with your healthcare team, and ensure you have reliable transportation to the hospital.",
	},
	39: {
		Title:   "Signs of Labor",
		Content: "Watch for regular contractions, water breaking, or bloody show. Time contractions and contact your healthcare provider when they're 5 minutes apart for 1 hour.",
	},
	40: {
		Title:   "Your Due Date",
		Content: "You've reached your due date! Only 5% of babies are born on their exact due date. Stay calm, rest when possible, and trust your body's process.",
	},
	41: {
		Title:   "Post-Due Date Monitoring",
		Content: "Your healthcare provider will monitor you and your baby closely. Non-stress tests and fluid checks help ensure your baby's well-being.",
	},
	42: {
		Title:   "Extended Pregnancy",
		Content: "Your healthcare provider may discuss induction options. Continue monitoring baby's movements and attend all scheduled appointments.",
	},
}

var generalTip = CatalogEntry{
	Title:   "General Pregnancy Wellness",
	Content: "Maintain regular prenatal care, eat a balanced diet, stay hydrated, get adequate rest, and don't hesitate to contact your healthcare provider with any concerns.",
}

// Lookup returns the canned tip for a gestational week. Weeks without a specific
// entry, including out-of-range values, fall back to the general wellness tip, so
// every input yields a usable tip.
func Lookup(week int) CatalogEntry {
	if tip, ok := weeklyTips[week]; ok {
		return tip
	}
	return generalTip
}
