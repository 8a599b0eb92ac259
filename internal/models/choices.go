package models

// Fixed category and subcategory enumerations. A subcategory is not checked
// against its parent category, only against the overall list.
var Categories = []string{
	"full_stack",
	"mobile_app",
	"data_science",
	"data_analytics",
	"software_testing",
	"digital_marketing",
	"ux_ui",
	"cyber_security",
}

var Subcategories = []string{
	"mern_stack",
	"python_stack",
	"java_stack",
	"dotnet_stack",
	"android",
	"ios",
	"flutter_app",
	"flutter_app_development",
	"data_science_training",
	"machine_learning_training",
	"data_analytics_training",
	"business_analytics_training",
	"software_testing_training",
	"selenium_automation_training",
	"manual_testing_training",
	"digital_marketing_training",
	"ux_ui_training",
	"ethical_hacking_training",
}

var PaymentMethods = []string{"upi", "paytm", "phonepe", "card"}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func ValidCategory(v string) bool    { return contains(Categories, v) }
func ValidSubcategory(v string) bool { return v == "" || contains(Subcategories, v) }
func ValidPaymentMethod(v string) bool {
	return contains(PaymentMethods, v)
}
