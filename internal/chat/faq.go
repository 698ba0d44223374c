package chat

import "strings"

// faqEntry pairs trigger keywords with a canned answer. Scoring favors
// longer keyword matches so specific phrasings beat generic ones.
type faqEntry struct {
	keywords []string
	answer   string
}

var faqDatabase = []faqEntry{
	{
		keywords: []string{"where do i start", "getting started", "first step", "how to start", "what should i do", "begin"},
		answer: "That's exactly the right question, because most people do nothing simply because they don't know where to start.\n\n" +
			"The best starting point is noticing your most frequent water habits during the day. Shower length, laundry and dishwashing frequency are usually where most of the water goes.\n\n" +
			"Even small changes there show visible results quickly. 💧",
	},
	{
		keywords: []string{"use the most", "where does it go", "identify", "which area", "lots of water", "where is it used"},
		answer: "There are a few simple ways to figure this out.\n\n" +
			"First, walk through your daily routine: shower, kitchen, laundry, cleaning. Then look at the rises and falls in your monthly bill.\n\n" +
			"Usually the biggest drains are long showers, frequent laundry and kitchen work under running water. Spotting them is the first step toward saving. 📊",
	},
	{
		keywords: []string{"without realizing", "waste", "unaware", "without noticing", "hidden"},
		answer: "The waste you don't notice is usually the biggest loss.\n\n" +
			"A dripping tap, a leaking cistern or water left running can add up to serious amounts by the end of the day.\n\n" +
			"They look small but matter a lot over time. Even a single drip can mean 20 liters a day! 💧",
	},
	{
		keywords: []string{"bill", "reflect", "money", "cost", "how much lower", "save money"},
		answer: "Yes, more than you'd think!\n\n" +
			"Households that save water consistently usually see their bills drop by 15 to 30 percent.\n\n" +
			"That helps your monthly budget and cuts needless consumption. Small changes, big savings! 💰",
	},
	{
		keywords: []string{"small change", "habit", "minor", "simple", "easy", "meaningful difference"},
		answer: "Absolutely yes!\n\n" +
			"Shaving a few minutes off your shower or not running machines half-full adds up to thousands of liters by month end.\n\n" +
			"Changes that look small combine into a big difference. Every drop counts! 🌊",
	},
	{
		keywords: []string{"shower length", "shorten", "shower saving", "minute", "how much in the shower"},
		answer: "An average shower uses roughly 10-15 liters per minute.\n\n" +
			"So cutting your shower by 5 minutes saves 50 to 75 liters in one go.\n\n" +
			"Over a month that's a serious win: around 1,500-2,000 liters! 🚿",
	},
	{
		keywords: []string{"lathering", "turn off and on", "off in the shower", "pause"},
		answer: "Yes, definitely worth it!\n\n" +
			"Turning the water off while you lather stops useless flow. This habit can nearly halve your shower usage.\n\n" +
			"That's 20-30 liters saved per shower! 💧",
	},
	{
		keywords: []string{"low-flow shower head", "uses less water", "shower head", "efficient head"},
		answer: "This comes up a lot and the answer is clear: yes, they work!\n\n" +
			"Low-flow heads distribute water more efficiently and cut consumption by 30-50 percent.\n\n" +
			"You don't give up comfort either. The investment pays for itself quickly! 🚿",
	},
	{
		keywords: []string{"every other day", "shower every day", "frequency", "how often shower"},
		answer: "This is entirely a personal call, but showering less often naturally lowers consumption.\n\n" +
			"Done while keeping up hygiene, it can make a real dent in monthly usage.\n\n" +
			"For example 15 showers instead of 30 = half the usage! 🌊",
	},
	{
		keywords: []string{"by hand or machine", "dishwasher", "wash by hand", "which is more efficient"},
		answer: "A fully loaded dishwasher uses far less water than washing by hand.\n\n" +
			"Machine: 12-15 liters\nBy hand (running water): 30-40 liters\n\n" +
			"Hand-washing under a running tap is one of the most wasteful methods. Use the machine, but run it full! 🍽️",
	},
	{
		keywords: []string{"fruit and vegetables", "rinse", "washing fruit", "washing vegetables"},
		answer: "Washing in a bowl instead of under running water is the most practical and efficient method.\n\n" +
			"You don't send water down the drain and you use only what you need.\n\n" +
			"The same bowl handles several batches of fruit and veg! 🥗",
	},
	{
		keywords: []string{"washing machine", "which conditions", "fully loaded", "half load"},
		answer: "Running the machine fully loaded with the right program is the most efficient approach.\n\n" +
			"A half-load wastes both water and energy, because the machine uses the same water either way!\n\n" +
			"Be patient and wait for a full load. 🧺",
	},
	{
		keywords: []string{"prewash", "pre-wash", "pre-rinse"},
		answer: "Yes, prewash burns a serious amount of extra water.\n\n" +
			"Unless the laundry is truly dirty, skipping prewash saves both water and energy.\n\n" +
			"Most modern detergents clean fine without it. 🧼",
	},
	{
		keywords: []string{"certain hours", "which hour", "timing", "when to use"},
		answer: "Demand is heavier at certain hours, which raises both cost and the load on the system.\n\n" +
			"The night tariff (22:00-04:00) is twice as expensive, so avoiding those hours matters!\n\n" +
			"Spreading usage across the day is better for both your budget and the infrastructure. ⏰",
	},
	{
		keywords: []string{"night usage", "night water", "why discouraged"},
		answer: "Two important reasons:\n\n" +
			"1️⃣ The night tariff costs twice the day rate (22:00-04:00)\n" +
			"2️⃣ Constant unplanned flow at night can sometimes point to a plumbing leak\n\n" +
			"So night usage should stay controlled and regular. 🌙",
	},
	{
		keywords: []string{"change the hours", "shift the timing", "what do i gain"},
		answer: "You get a more balanced consumption profile.\n\n" +
			"That helps you control the bill and keeps the water system running healthier.\n\n" +
			"Avoiding the night tariff (22:00-04:00) in particular can save you a lot! 💰",
	},
	{
		keywords: []string{"environment", "nature", "contribution", "ecology", "green"},
		answer: "Saving water isn't just a personal win; it's a direct contribution to the environment.\n\n" +
			"You help protect water sources and keep the ecosystem sustainable.\n\n" +
			"Every liter saved is a legacy for the next generations! 🌍",
	},
	{
		keywords: []string{"sustainable", "long term", "future"},
		answer: "Fresh water is finite. Only 2.5% of the world's water is fresh!\n\n" +
			"Controlled use today means water security tomorrow.\n\n" +
			"That makes it a critical sustainability issue. Every drop is precious! 💧",
	},
	{
		keywords: []string{"overuse", "problem", "risk", "danger"},
		answer: "The consequences are serious:\n\n" +
			"• Risk of water scarcity\n• Rising bills and costs\n• Infrastructure strain\n• Environmental damage\n\n" +
			"That's both a personal and a societal risk. Acting now is essential! ⚠️",
	},
	{
		keywords: []string{"climate", "carbon", "greenhouse", "global warming"},
		answer: "Yes, directly connected!\n\n" +
			"Treating and distributing water takes energy. Using less water indirectly means less energy use and fewer emissions.\n\n" +
			"Every liter saved = a smaller carbon footprint! 🌱",
	},
	{
		keywords: []string{"track", "monitor", "change behavior", "measure"},
		answer: "Seeing your consumption builds awareness.\n\n" +
			"People tend to use what they measure more carefully, which naturally leads to savings.\n\n" +
			"\"You can't manage what you can't measure\", and that's exactly it! 📊",
	},
	{
		keywords: []string{"weekly analysis", "report", "statistics"},
		answer: "They show you clearly on which days or hours you overconsume.\n\n" +
			"That lets you adjust your habits deliberately.\n\n" +
			"Data power! See the trends, take action. 📈",
	},
	{
		keywords: []string{"set a target", "purpose", "motivation", "goal"},
		answer: "Yes, absolutely!\n\n" +
			"Clear targets boost motivation and make savings stick.\n\n" +
			"Small but reachable goals work best. For example: \"I'll use 10% less water this week.\" 🎯",
	},
	{
		keywords: []string{"is it normal", "too much", "compare", "average", "benchmark"},
		answer: "Comparing against similar households and your own history is the most reliable method.\n\n" +
			"An average person uses 100-150 liters a day.\n" +
			"A family of four averages 12-15 m³ a month.\n\n" +
			"That tells you exactly where your consumption stands. 📊",
	},
	{
		keywords: []string{"3 suggestions", "today", "right away", "right now", "practical", "concrete"},
		answer: "Of course! Here are 3 you can apply right now:\n\n" +
			"1️⃣ **Shower:** Cut the time and turn the water off while lathering\n" +
			"2️⃣ **Machines:** Run laundry and dishes only when fully loaded\n" +
			"3️⃣ **Running water:** Drop running-tap habits, wash in a bowl instead\n\n" +
			"Even these 3 steps make a big difference! 💪",
	},
}

// matchFAQ returns the best-scoring FAQ answer for a message, or "" when no
// keyword matches at all.
func matchFAQ(message string) string {
	lower := strings.ToLower(message)

	var best string
	bestScore := 0
	for _, faq := range faqDatabase {
		score := 0
		for _, kw := range faq.keywords {
			if strings.Contains(lower, kw) {
				score += len(kw)
			}
		}
		if score > bestScore {
			bestScore = score
			best = faq.answer
		}
	}
	return best
}
