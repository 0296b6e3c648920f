// Package salarypredictor predicts employee salaries from experience,
// education and job attributes.
//
// The module has two halves joined only by a model artifact file:
//
//   - salary train reads the employee dataset (CSV or XLSX), one-hot
//     encodes the categorical columns, fits a random forest regressor and
//     writes the fitted pipeline with encoding/gob.
//   - salary serve loads that artifact once at start and serves an HTML
//     form plus a small JSON API that return predictions.
//
// # Packages
//
// The estimator packages follow a scikit-learn-like Fit/Predict API on
// gonum matrices:
//
//   - preprocessing: OneHotEncoder and ColumnTransformer
//   - sklearn/tree: CART DecisionTreeRegressor
//   - sklearn/ensemble: RandomForestRegressor
//   - sklearn/model_selection: TrainTestSplit
//   - sklearn/pipeline: encoder + forest with its feature schema
//   - metrics: R², MAE, RMSE
//
// Application code lives under internal/ (dataset, trainer, artifact,
// predictor, server, config, report) and cmd/salary.
//
// # Quick Start
//
//	salary train --dataset Employers_data.csv --model model.gob
//	salary serve --model model.gob --addr :8501
//
// Settings can also come from the environment or a .env file
// (SALARY_DATASET, SALARY_MODEL_PATH, SALARY_ADDR, SALARY_LOG_LEVEL ...).
//
// # Error Handling
//
// Errors are typed values from pkg/errors built on cockroachdb/errors and
// carry stack traces:
//
//	p, err := artifact.Load("model.gob")
//	if errors.Is(err, errors.ErrArtifactNotFound) {
//	    // train first
//	}
package salarypredictor
